package interviews

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

type CreateRequest struct {
	UserID        string
	JobID         *int64
	InterviewDate string
	InterviewType string
	Interviewer   string
	Notes         string
	Feedback      string
	Status        string
}

// parseDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: interviewDate %q is not an RFC3339 timestamp", ErrInvalidInput, raw)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Interview, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" || strings.TrimSpace(req.InterviewDate) == "" {
		return Interview{}, fmt.Errorf("%w: userId and interviewDate are required", ErrInvalidInput)
	}
	date, err := parseDate(req.InterviewDate)
	if err != nil {
		return Interview{}, err
	}
	if req.JobID != nil && *req.JobID <= 0 {
		req.JobID = nil
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = DefaultStatus
	}
	return s.Repo.Create(ctx, Interview{
		UserID:        userID,
		JobID:         req.JobID,
		InterviewDate: date,
		InterviewType: strings.TrimSpace(req.InterviewType),
		Interviewer:   strings.TrimSpace(req.Interviewer),
		Notes:         req.Notes,
		Feedback:      req.Feedback,
		Status:        status,
	})
}

// UpdateRequest carries the raw date so it can be validated here.
type UpdateRequest struct {
	InterviewDate *string
	InterviewType *string
	Interviewer   *string
	Notes         *string
	Feedback      *string
	Status        *string
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (Interview, error) {
	patch := Patch{
		InterviewType: req.InterviewType,
		Interviewer:   req.Interviewer,
		Notes:         req.Notes,
		Feedback:      req.Feedback,
		Status:        req.Status,
	}
	if req.InterviewDate != nil && strings.TrimSpace(*req.InterviewDate) != "" {
		date, err := parseDate(*req.InterviewDate)
		if err != nil {
			return Interview{}, err
		}
		patch.InterviewDate = &date
	}
	return s.Repo.Update(ctx, id, patch)
}

func (s *Service) List(ctx context.Context) ([]Interview, error) {
	return s.Repo.List(ctx)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Interview, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *Service) ListByJob(ctx context.Context, jobID int64) ([]Interview, error) {
	return s.Repo.ListByJob(ctx, jobID)
}

func (s *Service) Get(ctx context.Context, id int64) (Interview, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) (Interview, error) {
	return s.Repo.Delete(ctx, id)
}

// CountUpcoming counts the user's scheduled interviews from now on.
func (s *Service) CountUpcoming(ctx context.Context, userID string) (int, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return s.Repo.CountUpcoming(ctx, userID, now().UTC())
}
