package users

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo for dev and tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	users    map[string]User
	profiles map[string]Profile
	nextID   int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:    make(map[string]User),
		profiles: make(map[string]Profile),
	}
}

func (r *MemoryRepo) List(ctx context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) emailTaken(email, exceptID string) bool {
	for id, u := range r.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (r *MemoryRepo) Create(ctx context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok || r.emailTaken(user.Email, "") {
		return User{}, fmt.Errorf("%w: %s", ErrConflict, user.ID)
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	return user, nil
}

func (r *MemoryRepo) Ensure(ctx context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	existing, ok := r.users[user.ID]
	if !ok {
		if r.emailTaken(user.Email, user.ID) {
			return User{}, fmt.Errorf("%w: email %s", ErrConflict, user.Email)
		}
		user.CreatedAt = now
		user.UpdatedAt = now
		r.users[user.ID] = user
		return user, nil
	}
	if user.Name != "" {
		existing.Name = user.Name
	}
	if user.Avatar != "" {
		existing.Avatar = user.Avatar
	}
	existing.UpdatedAt = now
	r.users[user.ID] = existing
	return existing, nil
}

func (r *MemoryRepo) Update(ctx context.Context, id string, patch Patch) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if patch.Name != nil && *patch.Name != "" {
		user.Name = *patch.Name
	}
	if patch.Avatar != nil && *patch.Avatar != "" {
		user.Avatar = *patch.Avatar
	}
	if patch.EmailVerified != nil {
		user.EmailVerified = *patch.EmailVerified
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	return user, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	delete(r.users, id)
	delete(r.profiles, id)
	return user, nil
}

func (r *MemoryRepo) GetProfile(ctx context.Context, userID string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	return p, nil
}

func (r *MemoryRepo) UpsertProfile(ctx context.Context, userID, bio string) (Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return Profile{}, ErrNotFound
	}
	p, ok := r.profiles[userID]
	if !ok {
		r.nextID++
		p = Profile{ID: r.nextID, UserID: userID}
	}
	p.Bio = bio
	r.profiles[userID] = p
	return p, nil
}

var _ Repo = (*MemoryRepo)(nil)
