package interviews

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu         sync.RWMutex
	nextID     int64
	interviews map[int64]Interview
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{interviews: make(map[int64]Interview)}
}

func (r *MemoryRepo) filter(keep func(Interview) bool) []Interview {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Interview{}
	for _, iv := range r.interviews {
		if keep(iv) {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InterviewDate.Equal(out[j].InterviewDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].InterviewDate.Before(out[j].InterviewDate)
	})
	return out
}

func (r *MemoryRepo) List(ctx context.Context) ([]Interview, error) {
	return r.filter(func(Interview) bool { return true }), nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Interview, error) {
	return r.filter(func(iv Interview) bool { return iv.UserID == userID }), nil
}

func (r *MemoryRepo) ListByJob(ctx context.Context, jobID int64) ([]Interview, error) {
	return r.filter(func(iv Interview) bool { return iv.JobID != nil && *iv.JobID == jobID }), nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Interview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	iv, ok := r.interviews[id]
	if !ok {
		return Interview{}, ErrNotFound
	}
	return iv, nil
}

func (r *MemoryRepo) Create(ctx context.Context, iv Interview) (Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	iv.ID = r.nextID
	iv.CreatedAt = now
	iv.UpdatedAt = now
	r.interviews[iv.ID] = iv
	return iv, nil
}

func (r *MemoryRepo) Update(ctx context.Context, id int64, patch Patch) (Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.interviews[id]
	if !ok {
		return Interview{}, ErrNotFound
	}
	if patch.InterviewDate != nil {
		iv.InterviewDate = *patch.InterviewDate
	}
	setString(&iv.InterviewType, patch.InterviewType)
	setString(&iv.Interviewer, patch.Interviewer)
	setString(&iv.Notes, patch.Notes)
	setString(&iv.Feedback, patch.Feedback)
	setString(&iv.Status, patch.Status)
	iv.UpdatedAt = time.Now().UTC()
	r.interviews[id] = iv
	return iv, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id int64) (Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iv, ok := r.interviews[id]
	if !ok {
		return Interview{}, ErrNotFound
	}
	delete(r.interviews, id)
	return iv, nil
}

func (r *MemoryRepo) CountUpcoming(ctx context.Context, userID string, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, iv := range r.interviews {
		if iv.UserID == userID && iv.Status == DefaultStatus && !iv.InterviewDate.Before(since) {
			count++
		}
	}
	return count, nil
}

func setString(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}

var _ Repo = (*MemoryRepo)(nil)
