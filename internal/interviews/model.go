package interviews

import "time"

// DefaultStatus is assigned when a new interview omits one.
const DefaultStatus = "Scheduled"

type Interview struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"userId"`
	JobID         *int64    `json:"jobId"`
	InterviewDate time.Time `json:"interviewDate"`
	InterviewType string    `json:"interviewType"`
	Interviewer   string    `json:"interviewer"`
	Notes         string    `json:"notes"`
	Feedback      string    `json:"feedback"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Patch struct {
	InterviewDate *time.Time
	InterviewType *string
	Interviewer   *string
	Notes         *string
	Feedback      *string
	Status        *string
}
