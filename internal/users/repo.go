package users

import "context"

// Repo persists users and their profiles.
type Repo interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	// Ensure creates the user or refreshes name and avatar when they are non-empty.
	Ensure(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, id string, patch Patch) (User, error)
	Delete(ctx context.Context, id string) (User, error)
	GetProfile(ctx context.Context, userID string) (Profile, error)
	UpsertProfile(ctx context.Context, userID, bio string) (Profile, error)
}
