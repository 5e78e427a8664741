package applications

import (
	"context"

	"trackjob-backend/internal/jobs"
)

// Repo persists applications. Reads embed the referenced job.
type Repo interface {
	List(ctx context.Context) ([]Application, error)
	ListByUser(ctx context.Context, userID string) ([]Application, error)
	ListByJob(ctx context.Context, jobID int64) ([]Application, error)
	GetByID(ctx context.Context, id int64) (Application, error)
	Create(ctx context.Context, app Application) (Application, error)
	// CreateWithJob inserts job and an application for it atomically.
	CreateWithJob(ctx context.Context, job jobs.Job, app Application) (Application, error)
	Update(ctx context.Context, id int64, patch Patch) (Application, error)
	Delete(ctx context.Context, id int64) (Application, error)
	CountByStatus(ctx context.Context, userID string) (map[jobs.Status]int, error)
}
