package documents

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	docs   map[int64]Document
	keys   map[string]int64
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		docs: make(map[int64]Document),
		keys: make(map[string]int64),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[doc.StorageKey]; ok {
		return Document{}, fmt.Errorf("%w: %s", ErrConflict, doc.StorageKey)
	}
	r.nextID++
	doc.ID = r.nextID
	r.docs[doc.ID] = doc
	r.keys[doc.StorageKey] = doc.ID
	return doc, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Document{}
	for _, doc := range r.docs {
		if doc.UserID == userID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.docs, id)
	delete(r.keys, doc.StorageKey)
	return nil
}

func (r *MemoryRepo) ExistsByKey(ctx context.Context, storageKey string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.keys[storageKey]
	return ok, nil
}

func (r *MemoryRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, doc := range r.docs {
		if doc.UserID == userID {
			count++
		}
	}
	return count, nil
}

var _ Repo = (*MemoryRepo)(nil)
