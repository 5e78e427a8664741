package documents

import "context"

// Repo defines persistence operations for document metadata.
type Repo interface {
	Create(ctx context.Context, doc Document) (Document, error)
	GetByID(ctx context.Context, id int64) (Document, error)
	ListByUser(ctx context.Context, userID string) ([]Document, error)
	Delete(ctx context.Context, id int64) error
	ExistsByKey(ctx context.Context, storageKey string) (bool, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}
