package dashboard

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"trackjob-backend/internal/jobs"
	"trackjob-backend/internal/shared/server/servertest"
)

type stubApps map[jobs.Status]int

func (s stubApps) CountByStatus(context.Context, string) (map[jobs.Status]int, error) {
	return s, nil
}

type stubCount struct {
	n   int
	err error
}

func (s stubCount) CountUpcoming(context.Context, string) (int, error) { return s.n, s.err }
func (s stubCount) CountByUser(context.Context, string) (int, error)   { return s.n, s.err }

func TestSummaryAggregates(t *testing.T) {
	svc := &Service{
		Applications: stubApps{jobs.StatusApplied: 4, jobs.StatusOffer: 1},
		Interviews:   stubCount{n: 2},
		Notes:        stubCount{n: 7},
		Documents:    stubCount{n: 3},
	}

	got, err := svc.Summary(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 5, got.TotalApplications)
	require.Equal(t, 4, got.ByStatus[jobs.StatusApplied])
	require.Equal(t, 0, got.ByStatus[jobs.StatusRejected])
	require.Len(t, got.ByStatus, len(jobs.Statuses))
	require.Equal(t, 2, got.UpcomingInterviews)
	require.Equal(t, 7, got.Notes)
	require.Equal(t, 3, got.Documents)
}

func TestSummaryPropagatesErrors(t *testing.T) {
	svc := &Service{
		Applications: stubApps{},
		Interviews:   stubCount{},
		Notes:        stubCount{err: errors.New("db down")},
		Documents:    stubCount{},
	}
	_, err := svc.Summary(context.Background(), "u1")
	require.ErrorContains(t, err, "count notes: db down")

	r := servertest.Router(NewHandler(svc).RegisterRoutes)
	resp, env := servertest.Do(t, r, http.MethodGet, "/dashboard/u1", "")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	require.Equal(t, "internal_error", env.Code)
}

func TestDashboardHandler(t *testing.T) {
	svc := &Service{
		Applications: stubApps{jobs.StatusSaved: 2},
		Interviews:   stubCount{n: 1},
		Notes:        stubCount{},
		Documents:    stubCount{n: 1},
	}
	r := servertest.Router(NewHandler(svc).RegisterRoutes)

	resp, env := servertest.Do(t, r, http.MethodGet, "/dashboard/u1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var got Summary
	servertest.Decode(t, env, &got)
	require.Equal(t, 2, got.TotalApplications)
	require.Equal(t, 2, got.ByStatus[jobs.StatusSaved])
	require.Equal(t, 1, got.Documents)

	r = servertest.Router(NewHandler(svc).RegisterRoutes, servertest.AsUser("u2"))
	resp, _ = servertest.Do(t, r, http.MethodGet, "/dashboard/u1", "")
	require.Equal(t, http.StatusForbidden, resp.Code)
}
