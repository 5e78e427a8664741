package applications

import (
	"time"

	"trackjob-backend/internal/jobs"
)

type Application struct {
	ID          int64       `json:"id"`
	UserID      string      `json:"userId"`
	JobID       int64       `json:"jobId"`
	Status      jobs.Status `json:"status"`
	AppliedDate time.Time   `json:"appliedDate"`
	CoverLetter string      `json:"coverLetter"`
	Resume      string      `json:"resume"`
	Notes       string      `json:"notes"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Job         *jobs.Job   `json:"job,omitempty"`
}

type Patch struct {
	Status      *jobs.Status
	AppliedDate *time.Time
	CoverLetter *string
	Resume      *string
	Notes       *string
}
