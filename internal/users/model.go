package users

import "time"

// User is an account keyed by the identity provider's user id.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Avatar        string    `json:"avatar"`
	Provider      string    `json:"provider"`
	ProviderID    string    `json:"providerId"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Profile holds free-form details attached to a user.
type Profile struct {
	ID     int64  `json:"id"`
	UserID string `json:"userId"`
	Bio    string `json:"bio"`
}

// Patch lists the fields an update may change. Nil fields are left alone.
type Patch struct {
	Name          *string
	Avatar        *string
	EmailVerified *bool
}
