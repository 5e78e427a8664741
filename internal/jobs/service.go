package jobs

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Normalize validates a new job and fills defaults.
func Normalize(job Job) (Job, error) {
	job.CompanyName = strings.TrimSpace(job.CompanyName)
	job.JobTitle = strings.TrimSpace(job.JobTitle)
	job.JobLink = strings.TrimSpace(job.JobLink)
	if job.CompanyName == "" || job.JobTitle == "" || job.JobLink == "" {
		return Job{}, fmt.Errorf("%w: companyname, jobtitle, and joblink are required", ErrInvalidInput)
	}
	status, err := ParseStatus(string(job.Status))
	if err != nil {
		return Job{}, err
	}
	job.Status = status
	if job.AuthorID != nil && strings.TrimSpace(*job.AuthorID) == "" {
		job.AuthorID = nil
	}
	return job, nil
}

func (s *Service) List(ctx context.Context) ([]Job, error) {
	return s.Repo.List(ctx)
}

func (s *Service) ListByAuthor(ctx context.Context, authorID string) ([]Job, error) {
	return s.Repo.ListByAuthor(ctx, authorID)
}

func (s *Service) Get(ctx context.Context, id int64) (Job, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, job Job) (Job, error) {
	job, err := Normalize(job)
	if err != nil {
		return Job{}, err
	}
	return s.Repo.Create(ctx, job)
}

func (s *Service) Update(ctx context.Context, id int64, patch Patch) (Job, error) {
	if patch.Status != nil && *patch.Status != "" && !patch.Status.Valid() {
		return Job{}, invalidStatus(string(*patch.Status))
	}
	if patch.Status != nil && *patch.Status == "" {
		patch.Status = nil
	}
	return s.Repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id int64) (Job, error) {
	return s.Repo.Delete(ctx, id)
}
