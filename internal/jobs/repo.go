package jobs

import "context"

type Repo interface {
	List(ctx context.Context) ([]Job, error)
	ListByAuthor(ctx context.Context, authorID string) ([]Job, error)
	GetByID(ctx context.Context, id int64) (Job, error)
	Create(ctx context.Context, job Job) (Job, error)
	Update(ctx context.Context, id int64, patch Patch) (Job, error)
	Delete(ctx context.Context, id int64) (Job, error)
}
