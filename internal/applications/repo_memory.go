package applications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"trackjob-backend/internal/jobs"
)

// MemoryRepo keeps applications in memory and resolves jobs through Jobs.
type MemoryRepo struct {
	Jobs jobs.Repo

	mu     sync.RWMutex
	nextID int64
	apps   map[int64]Application
}

func NewMemoryRepo(jobRepo jobs.Repo) *MemoryRepo {
	return &MemoryRepo{Jobs: jobRepo, apps: make(map[int64]Application)}
}

func (r *MemoryRepo) withJob(ctx context.Context, app Application) Application {
	if job, err := r.Jobs.GetByID(ctx, app.JobID); err == nil {
		app.Job = &job
	}
	return app
}

func (r *MemoryRepo) filter(ctx context.Context, keep func(Application) bool, less func(a, b Application) bool) []Application {
	r.mu.RLock()
	out := []Application{}
	for _, app := range r.apps {
		if keep(app) {
			out = append(out, app)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	for i := range out {
		out[i] = r.withJob(ctx, out[i])
	}
	return out
}

func byID(a, b Application) bool { return a.ID < b.ID }

func (r *MemoryRepo) List(ctx context.Context) ([]Application, error) {
	return r.filter(ctx, func(Application) bool { return true }, byID), nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	return r.filter(ctx, func(a Application) bool { return a.UserID == userID }, func(a, b Application) bool {
		if a.AppliedDate.Equal(b.AppliedDate) {
			return a.ID > b.ID
		}
		return a.AppliedDate.After(b.AppliedDate)
	}), nil
}

func (r *MemoryRepo) ListByJob(ctx context.Context, jobID int64) ([]Application, error) {
	return r.filter(ctx, func(a Application) bool { return a.JobID == jobID }, byID), nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Application, error) {
	r.mu.RLock()
	app, ok := r.apps[id]
	r.mu.RUnlock()
	if !ok {
		return Application{}, ErrNotFound
	}
	return r.withJob(ctx, app), nil
}

func (r *MemoryRepo) Create(ctx context.Context, app Application) (Application, error) {
	if _, err := r.Jobs.GetByID(ctx, app.JobID); err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return Application{}, fmt.Errorf("%w: userId or jobId does not exist", ErrInvalidInput)
		}
		return Application{}, err
	}
	r.mu.Lock()
	r.nextID++
	now := time.Now().UTC()
	app.ID = r.nextID
	app.CreatedAt = now
	app.UpdatedAt = now
	app.Job = nil
	r.apps[app.ID] = app
	r.mu.Unlock()
	return r.withJob(ctx, app), nil
}

func (r *MemoryRepo) CreateWithJob(ctx context.Context, job jobs.Job, app Application) (Application, error) {
	created, err := r.Jobs.Create(ctx, job)
	if err != nil {
		return Application{}, err
	}
	app.JobID = created.ID
	return r.Create(ctx, app)
}

func (r *MemoryRepo) Update(ctx context.Context, id int64, patch Patch) (Application, error) {
	r.mu.Lock()
	app, ok := r.apps[id]
	if !ok {
		r.mu.Unlock()
		return Application{}, ErrNotFound
	}
	if patch.Status != nil {
		app.Status = *patch.Status
	}
	if patch.AppliedDate != nil {
		app.AppliedDate = *patch.AppliedDate
	}
	setString(&app.CoverLetter, patch.CoverLetter)
	setString(&app.Resume, patch.Resume)
	setString(&app.Notes, patch.Notes)
	app.UpdatedAt = time.Now().UTC()
	r.apps[id] = app
	r.mu.Unlock()
	return r.withJob(ctx, app), nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id int64) (Application, error) {
	r.mu.Lock()
	app, ok := r.apps[id]
	if ok {
		delete(r.apps, id)
	}
	r.mu.Unlock()
	if !ok {
		return Application{}, ErrNotFound
	}
	return r.withJob(ctx, app), nil
}

func (r *MemoryRepo) CountByStatus(ctx context.Context, userID string) (map[jobs.Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := map[jobs.Status]int{}
	for _, app := range r.apps {
		if app.UserID == userID {
			out[app.Status]++
		}
	}
	return out, nil
}

func setString(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}

var _ Repo = (*MemoryRepo)(nil)
