package notes

import "context"

type Repo interface {
	List(ctx context.Context) ([]Note, error)
	ListByUser(ctx context.Context, userID string) ([]Note, error)
	ListByJob(ctx context.Context, jobID int64) ([]Note, error)
	GetByID(ctx context.Context, id int64) (Note, error)
	Create(ctx context.Context, note Note) (Note, error)
	Update(ctx context.Context, id int64, patch Patch) (Note, error)
	Delete(ctx context.Context, id int64) (Note, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}
