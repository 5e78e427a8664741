package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trackjob-backend/internal/jobs"
	"trackjob-backend/internal/users"
)

// UserEnsurer finds or creates the user behind an identity-provider profile.
type UserEnsurer interface {
	Ensure(ctx context.Context, user users.User) (users.User, error)
}

type Service struct {
	Repo Repo
	// Users resolves ClerkUser profiles when no userId is given. Optional.
	Users UserEnsurer
	Now   func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

// CreateRequest references an existing job by JobID or carries a new Job.
type CreateRequest struct {
	UserID      string
	JobID       int64
	Job         *jobs.Job
	Status      string
	AppliedDate *time.Time
	CoverLetter string
	Resume      string
	Notes       string
	// ClerkUser stands in for UserID when the client only knows its provider profile.
	ClerkUser *ClerkUser
}

// ClerkUser is the identity-provider profile sent by the web client.
type ClerkUser struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	Avatar     string
}

// OwnerID is the user id the request acts for, before any lookup.
func (r CreateRequest) OwnerID() string {
	if id := strings.TrimSpace(r.UserID); id != "" {
		return id
	}
	if r.ClerkUser != nil {
		return strings.TrimSpace(r.ClerkUser.ProviderID)
	}
	return ""
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Application, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" && req.ClerkUser != nil && s.Users != nil {
		id, err := s.ensureUser(ctx, *req.ClerkUser)
		if err != nil {
			return Application{}, err
		}
		userID = id
	}
	if userID == "" {
		return Application{}, fmt.Errorf("%w: userId or clerkUser is required", ErrInvalidInput)
	}
	status, err := jobs.ParseStatus(req.Status)
	if err != nil {
		return Application{}, invalidFromJobs(err)
	}
	app := Application{
		UserID:      userID,
		Status:      status,
		AppliedDate: s.now(),
		CoverLetter: strings.TrimSpace(req.CoverLetter),
		Resume:      strings.TrimSpace(req.Resume),
		Notes:       strings.TrimSpace(req.Notes),
	}
	if req.AppliedDate != nil {
		app.AppliedDate = req.AppliedDate.UTC()
	}

	switch {
	case req.JobID > 0:
		app.JobID = req.JobID
		return s.Repo.Create(ctx, app)
	case req.Job != nil:
		job := *req.Job
		job.AuthorID = &userID
		job, err := jobs.Normalize(job)
		if err != nil {
			return Application{}, invalidFromJobs(err)
		}
		return s.Repo.CreateWithJob(ctx, job, app)
	default:
		return Application{}, fmt.Errorf("%w: either jobId or job object must be provided", ErrInvalidInput)
	}
}

func (s *Service) List(ctx context.Context) ([]Application, error) {
	return s.Repo.List(ctx)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *Service) ListByJob(ctx context.Context, jobID int64) ([]Application, error) {
	return s.Repo.ListByJob(ctx, jobID)
}

func (s *Service) Get(ctx context.Context, id int64) (Application, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, patch Patch) (Application, error) {
	if patch.Status != nil {
		if *patch.Status == "" {
			patch.Status = nil
		} else if !patch.Status.Valid() {
			_, err := jobs.ParseStatus(string(*patch.Status))
			return Application{}, invalidFromJobs(err)
		}
	}
	return s.Repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id int64) (Application, error) {
	return s.Repo.Delete(ctx, id)
}

// CountByStatus returns a count for every known status, zero-filled.
func (s *Service) CountByStatus(ctx context.Context, userID string) (map[jobs.Status]int, error) {
	counts, err := s.Repo.CountByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[jobs.Status]int, len(jobs.Statuses))
	for _, status := range jobs.Statuses {
		out[status] = counts[status]
	}
	return out, nil
}

// ensureUser finds or creates the user keyed by the provider id.
func (s *Service) ensureUser(ctx context.Context, profile ClerkUser) (string, error) {
	providerID := strings.TrimSpace(profile.ProviderID)
	if providerID == "" {
		return "", fmt.Errorf("%w: clerkUser.providerId is required", ErrInvalidInput)
	}
	provider := strings.TrimSpace(profile.Provider)
	if provider == "" {
		provider = "clerk"
	}
	email := strings.TrimSpace(profile.Email)
	if email == "" {
		email = "user+" + providerID + "@local"
	}
	user, err := s.Users.Ensure(ctx, users.User{
		ID:         providerID,
		Email:      email,
		Name:       strings.TrimSpace(profile.Name),
		Avatar:     strings.TrimSpace(profile.Avatar),
		Provider:   provider,
		ProviderID: providerID,
	})
	switch {
	case errors.Is(err, users.ErrInvalidInput), errors.Is(err, users.ErrConflict):
		return "", fmt.Errorf("%w: clerkUser: %s", ErrInvalidInput, err.Error())
	case err != nil:
		return "", fmt.Errorf("ensure user: %w", err)
	}
	return user.ID, nil
}

// invalidFromJobs rewraps a jobs validation error as this package's sentinel.
func invalidFromJobs(err error) error {
	msg := strings.TrimPrefix(err.Error(), jobs.ErrInvalidInput.Error()+": ")
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
