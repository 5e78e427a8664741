package jobs

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	jobs   map[int64]Job
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{jobs: make(map[int64]Job)}
}

func (r *MemoryRepo) filter(keep func(Job) bool) []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Job{}
	for _, job := range r.jobs {
		if keep(job) {
			out = append(out, job)
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

func (r *MemoryRepo) List(ctx context.Context) ([]Job, error) {
	return r.filter(func(Job) bool { return true }), nil
}

func (r *MemoryRepo) ListByAuthor(ctx context.Context, authorID string) ([]Job, error) {
	return r.filter(func(j Job) bool { return j.AuthorID != nil && *j.AuthorID == authorID }), nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

func (r *MemoryRepo) Create(ctx context.Context, job Job) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	job.ID = r.nextID
	job.CreatedAt = now
	job.UpdatedAt = now
	r.jobs[job.ID] = job
	return job, nil
}

func (r *MemoryRepo) Update(ctx context.Context, id int64, patch Patch) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	setString(&job.CompanyName, patch.CompanyName)
	setString(&job.JobTitle, patch.JobTitle)
	setString(&job.JobLink, patch.JobLink)
	setString(&job.Comments, patch.Comments)
	if patch.Status != nil {
		job.Status = *patch.Status
	}
	if patch.Published != nil {
		job.Published = *patch.Published
	}
	job.UpdatedAt = time.Now().UTC()
	r.jobs[id] = job
	return job, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id int64) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	delete(r.jobs, id)
	return job, nil
}

func setString(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}

var _ Repo = (*MemoryRepo)(nil)
