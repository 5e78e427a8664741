package notes

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

func (s *Service) Create(ctx context.Context, note Note) (Note, error) {
	note.UserID = strings.TrimSpace(note.UserID)
	note.Title = strings.TrimSpace(note.Title)
	if note.UserID == "" || note.Title == "" || strings.TrimSpace(note.Content) == "" {
		return Note{}, fmt.Errorf("%w: userId, title, and content are required", ErrInvalidInput)
	}
	if note.Category == "" {
		note.Category = CategoryOther
	}
	if !note.Category.Valid() {
		return Note{}, invalidCategory(note.Category)
	}
	if note.JobID != nil && *note.JobID <= 0 {
		note.JobID = nil
	}
	return s.Repo.Create(ctx, note)
}

func (s *Service) Update(ctx context.Context, id int64, patch Patch) (Note, error) {
	if patch.Category != nil && *patch.Category != "" && !patch.Category.Valid() {
		return Note{}, invalidCategory(*patch.Category)
	}
	return s.Repo.Update(ctx, id, patch)
}

func (s *Service) List(ctx context.Context) ([]Note, error) {
	return s.Repo.List(ctx)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Note, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *Service) ListByJob(ctx context.Context, jobID int64) ([]Note, error) {
	return s.Repo.ListByJob(ctx, jobID)
}

func (s *Service) Get(ctx context.Context, id int64) (Note, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) (Note, error) {
	return s.Repo.Delete(ctx, id)
}

func (s *Service) CountByUser(ctx context.Context, userID string) (int, error) {
	return s.Repo.CountByUser(ctx, userID)
}
