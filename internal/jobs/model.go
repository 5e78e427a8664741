package jobs

import "time"

// Status tracks where a job or application stands.
type Status string

const (
	StatusApplied      Status = "APPLIED"
	StatusInterviewing Status = "INTERVIEWING"
	StatusPending      Status = "PENDING"
	StatusOffer        Status = "OFFER"
	StatusRejected     Status = "REJECTED"
	StatusSaved        Status = "SAVED"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusApplied, StatusInterviewing, StatusPending, StatusOffer, StatusRejected, StatusSaved}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus returns the default for "" and ErrInvalidInput for unknown values.
func ParseStatus(raw string) (Status, error) {
	if raw == "" {
		return StatusApplied, nil
	}
	s := Status(raw)
	if !s.Valid() {
		return "", invalidStatus(raw)
	}
	return s, nil
}

type Job struct {
	ID          int64     `json:"id"`
	CompanyName string    `json:"companyname"`
	JobTitle    string    `json:"jobtitle"`
	JobLink     string    `json:"joblink"`
	Status      Status    `json:"status"`
	Comments    string    `json:"comments"`
	Published   bool      `json:"published"`
	AuthorID    *string   `json:"authorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Patch holds optional job updates. Empty strings leave fields unchanged.
type Patch struct {
	CompanyName *string
	JobTitle    *string
	JobLink     *string
	Status      *Status
	Comments    *string
	Published   *bool
}
