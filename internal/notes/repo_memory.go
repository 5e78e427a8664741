package notes

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	notes  map[int64]Note
	now    func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{notes: make(map[int64]Note), now: time.Now}
}

func (r *MemoryRepo) filter(keep func(Note) bool) []Note {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Note{}
	for _, n := range r.notes {
		if keep(n) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *MemoryRepo) List(ctx context.Context) ([]Note, error) {
	return r.filter(func(Note) bool { return true }), nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Note, error) {
	return r.filter(func(n Note) bool { return n.UserID == userID }), nil
}

func (r *MemoryRepo) ListByJob(ctx context.Context, jobID int64) ([]Note, error) {
	return r.filter(func(n Note) bool { return n.JobID != nil && *n.JobID == jobID }), nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notes[id]
	if !ok {
		return Note{}, ErrNotFound
	}
	return n, nil
}

func (r *MemoryRepo) Create(ctx context.Context, note Note) (Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := r.now().UTC()
	note.ID = r.nextID
	note.CreatedAt = now
	note.UpdatedAt = now
	r.notes[note.ID] = note
	return note, nil
}

func (r *MemoryRepo) Update(ctx context.Context, id int64, patch Patch) (Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok {
		return Note{}, ErrNotFound
	}
	if patch.Title != nil && *patch.Title != "" {
		n.Title = *patch.Title
	}
	if patch.Content != nil && *patch.Content != "" {
		n.Content = *patch.Content
	}
	if patch.Category != nil && *patch.Category != "" {
		n.Category = *patch.Category
	}
	n.UpdatedAt = r.now().UTC()
	r.notes[id] = n
	return n, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id int64) (Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok {
		return Note{}, ErrNotFound
	}
	delete(r.notes, id)
	return n, nil
}

func (r *MemoryRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, n := range r.notes {
		if n.UserID == userID {
			count++
		}
	}
	return count, nil
}

var _ Repo = (*MemoryRepo)(nil)
