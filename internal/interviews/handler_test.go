package interviews

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trackjob-backend/internal/shared/server/servertest"
)

func newRouter(svc *Service) http.Handler {
	return servertest.Router(NewHandler(svc).RegisterRoutes)
}

func TestCreateInterviewDefaults(t *testing.T) {
	r := newRouter(NewService(NewMemoryRepo()))

	resp, env := servertest.Do(t, r, http.MethodPost, "/interviews",
		`{"userId":"u1","jobId":3,"interviewDate":"2026-03-01T15:00:00+01:00","interviewer":"Sam"}`)
	require.Equal(t, http.StatusCreated, resp.Code)
	var iv Interview
	servertest.Decode(t, env, &iv)
	require.Equal(t, DefaultStatus, iv.Status)
	require.Equal(t, time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC), iv.InterviewDate.UTC())
	require.NotNil(t, iv.JobID)
	require.Equal(t, int64(3), *iv.JobID)
}

func TestCreateInterviewValidation(t *testing.T) {
	r := newRouter(NewService(NewMemoryRepo()))

	resp, env := servertest.Do(t, r, http.MethodPost, "/interviews", `{"userId":"u1"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, env.Error, "userId and interviewDate are required")

	resp, env = servertest.Do(t, r, http.MethodPost, "/interviews", `{"userId":"u1","interviewDate":"next tuesday"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, env.Error, "interviewDate")
}

func TestListByUserAscending(t *testing.T) {
	r := newRouter(NewService(NewMemoryRepo()))
	servertest.Do(t, r, http.MethodPost, "/interviews", `{"userId":"u1","interviewDate":"2026-03-05T10:00:00Z","interviewer":"late"}`)
	servertest.Do(t, r, http.MethodPost, "/interviews", `{"userId":"u1","interviewDate":"2026-03-01","interviewer":"early"}`)
	servertest.Do(t, r, http.MethodPost, "/interviews", `{"userId":"u2","interviewDate":"2026-02-01T10:00:00Z"}`)

	resp, env := servertest.Do(t, r, http.MethodGet, "/interviews/user/u1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var out []Interview
	servertest.Decode(t, env, &out)
	require.Len(t, out, 2)
	require.Equal(t, "early", out[0].Interviewer)
	require.Equal(t, "late", out[1].Interviewer)
}

func TestUpdateAndDeleteInterview(t *testing.T) {
	r := newRouter(NewService(NewMemoryRepo()))
	servertest.Do(t, r, http.MethodPost, "/interviews", `{"userId":"u1","interviewDate":"2026-03-05T10:00:00Z","notes":"prep"}`)

	resp, env := servertest.Do(t, r, http.MethodPut, "/interviews/1", `{"status":"Completed","feedback":"went well"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	var iv Interview
	servertest.Decode(t, env, &iv)
	require.Equal(t, "Completed", iv.Status)
	require.Equal(t, "went well", iv.Feedback)
	require.Equal(t, "prep", iv.Notes)

	resp, _ = servertest.Do(t, r, http.MethodPut, "/interviews/1", `{"interviewDate":"soon"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp, _ = servertest.Do(t, r, http.MethodDelete, "/interviews/1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	resp, env = servertest.Do(t, r, http.MethodDelete, "/interviews/1", "")
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, "Interview not found", env.Error)
}

func TestCountUpcoming(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	svc.Now = func() time.Time { return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	for _, req := range []CreateRequest{
		{UserID: "u1", InterviewDate: "2026-03-01T10:00:00Z"},
		{UserID: "u1", InterviewDate: "2026-03-03T10:00:00Z"},
		{UserID: "u1", InterviewDate: "2026-03-04T10:00:00Z", Status: "Cancelled"},
		{UserID: "u2", InterviewDate: "2026-03-05T10:00:00Z"},
	} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	count, err := svc.CountUpcoming(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
