// Package dashboard aggregates per-user counts across the tracker.
package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"trackjob-backend/internal/jobs"
)

type ApplicationCounter interface {
	CountByStatus(ctx context.Context, userID string) (map[jobs.Status]int, error)
}

type InterviewCounter interface {
	CountUpcoming(ctx context.Context, userID string) (int, error)
}

type UserCounter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

// Summary is the dashboard card data for one user.
type Summary struct {
	TotalApplications  int                 `json:"totalApplications"`
	ByStatus           map[jobs.Status]int `json:"byStatus"`
	UpcomingInterviews int                 `json:"upcomingInterviews"`
	Notes              int                 `json:"notes"`
	Documents          int                 `json:"documents"`
}

type Service struct {
	Applications ApplicationCounter
	Interviews   InterviewCounter
	Notes        UserCounter
	Documents    UserCounter
}

// Summary runs the four counts concurrently and fails on the first error.
func (s *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	var out Summary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.Applications.CountByStatus(ctx, userID)
		if err != nil {
			return fmt.Errorf("count applications: %w", err)
		}
		out.ByStatus = make(map[jobs.Status]int, len(jobs.Statuses))
		for _, status := range jobs.Statuses {
			out.ByStatus[status] = counts[status]
		}
		for _, n := range counts {
			out.TotalApplications += n
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.Interviews.CountUpcoming(ctx, userID)
		if err != nil {
			return fmt.Errorf("count interviews: %w", err)
		}
		out.UpcomingInterviews = n
		return nil
	})
	g.Go(func() error {
		n, err := s.Notes.CountByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("count notes: %w", err)
		}
		out.Notes = n
		return nil
	})
	g.Go(func() error {
		n, err := s.Documents.CountByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("count documents: %w", err)
		}
		out.Documents = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return out, nil
}
