package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) ready() error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	return nil
}

func normalize(user User) (User, error) {
	user.ID = strings.TrimSpace(user.ID)
	user.Email = strings.TrimSpace(user.Email)
	if user.ID == "" || user.Email == "" {
		return User{}, fmt.Errorf("%w: id and email are required", ErrInvalidInput)
	}
	return user, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	if err := s.ready(); err != nil {
		return User{}, err
	}
	if strings.TrimSpace(id) == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, id)
}

// Create inserts a new user. Users created through the API come from a
// verified identity provider, so the email is marked verified.
func (s *Service) Create(ctx context.Context, user User) (User, error) {
	if err := s.ready(); err != nil {
		return User{}, err
	}
	user, err := normalize(user)
	if err != nil {
		return User{}, err
	}
	user.EmailVerified = true
	return s.Repo.Create(ctx, user)
}

// Ensure finds or creates the user, refreshing name and avatar.
func (s *Service) Ensure(ctx context.Context, user User) (User, error) {
	if err := s.ready(); err != nil {
		return User{}, err
	}
	user, err := normalize(user)
	if err != nil {
		return User{}, err
	}
	user.EmailVerified = true
	return s.Repo.Ensure(ctx, user)
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (User, error) {
	if err := s.ready(); err != nil {
		return User{}, err
	}
	return s.Repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id string) (User, error) {
	if err := s.ready(); err != nil {
		return User{}, err
	}
	return s.Repo.Delete(ctx, id)
}

func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	if err := s.ready(); err != nil {
		return Profile{}, err
	}
	return s.Repo.GetProfile(ctx, userID)
}

func (s *Service) SaveProfile(ctx context.Context, userID, bio string) (Profile, error) {
	if err := s.ready(); err != nil {
		return Profile{}, err
	}
	return s.Repo.UpsertProfile(ctx, userID, strings.TrimSpace(bio))
}
