package interviews

import (
	"context"
	"time"
)

type Repo interface {
	List(ctx context.Context) ([]Interview, error)
	ListByUser(ctx context.Context, userID string) ([]Interview, error)
	ListByJob(ctx context.Context, jobID int64) ([]Interview, error)
	GetByID(ctx context.Context, id int64) (Interview, error)
	Create(ctx context.Context, iv Interview) (Interview, error)
	Update(ctx context.Context, id int64, patch Patch) (Interview, error)
	Delete(ctx context.Context, id int64) (Interview, error)
	// CountUpcoming counts scheduled interviews at or after since.
	CountUpcoming(ctx context.Context, userID string, since time.Time) (int, error)
}
