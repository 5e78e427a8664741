package jobs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"trackjob-backend/internal/shared/server/servertest"
)

func newRouter() http.Handler {
	return servertest.Router(NewHandler(NewService(NewMemoryRepo())).RegisterRoutes)
}

func TestCreateJobDefaultsStatus(t *testing.T) {
	r := newRouter()

	resp, env := servertest.Do(t, r, http.MethodPost, "/jobs",
		`{"companyname":"Acme","jobtitle":"Go Engineer","joblink":"https://acme.test/jobs/1","authorId":"u1"}`)
	require.Equal(t, http.StatusCreated, resp.Code)
	var job Job
	servertest.Decode(t, env, &job)
	require.Equal(t, StatusApplied, job.Status)
	require.NotNil(t, job.AuthorID)
	require.Equal(t, "u1", *job.AuthorID)
	require.False(t, job.Published)
}

func TestCreateJobValidation(t *testing.T) {
	r := newRouter()

	resp, env := servertest.Do(t, r, http.MethodPost, "/jobs", `{"companyname":"Acme"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, env.Error, "companyname, jobtitle, and joblink are required")

	resp, env = servertest.Do(t, r, http.MethodPost, "/jobs",
		`{"companyname":"Acme","jobtitle":"x","joblink":"y","status":"GHOSTED"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, env.Error, `status "GHOSTED"`)
}

func TestUpdateJobIsPartial(t *testing.T) {
	r := newRouter()
	servertest.Do(t, r, http.MethodPost, "/jobs", `{"companyname":"Acme","jobtitle":"Go","joblink":"l","comments":"keep"}`)

	resp, env := servertest.Do(t, r, http.MethodPut, "/jobs/1", `{"status":"OFFER","published":true}`)
	require.Equal(t, http.StatusOK, resp.Code)
	var job Job
	servertest.Decode(t, env, &job)
	require.Equal(t, StatusOffer, job.Status)
	require.True(t, job.Published)
	require.Equal(t, "Acme", job.CompanyName)
	require.Equal(t, "keep", job.Comments)

	resp, _ = servertest.Do(t, r, http.MethodPut, "/jobs/1", `{"status":"NOPE"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestJobLookupsAndDelete(t *testing.T) {
	r := newRouter()
	servertest.Do(t, r, http.MethodPost, "/jobs", `{"companyname":"A","jobtitle":"t","joblink":"l","authorId":"u1"}`)
	servertest.Do(t, r, http.MethodPost, "/jobs", `{"companyname":"B","jobtitle":"t","joblink":"l","authorId":"u2"}`)

	resp, env := servertest.Do(t, r, http.MethodGet, "/jobs/author/u1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var mine []Job
	servertest.Decode(t, env, &mine)
	require.Len(t, mine, 1)
	require.Equal(t, "A", mine[0].CompanyName)

	resp, _ = servertest.Do(t, r, http.MethodGet, "/jobs/abc", "")
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp, env = servertest.Do(t, r, http.MethodDelete, "/jobs/2", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "Job deleted", env.Message)

	resp, env = servertest.Do(t, r, http.MethodGet, "/jobs/2", "")
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, "Job not found", env.Error)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("")
	require.NoError(t, err)
	require.Equal(t, StatusApplied, s)

	s, err = ParseStatus("SAVED")
	require.NoError(t, err)
	require.Equal(t, StatusSaved, s)

	_, err = ParseStatus("saved")
	require.ErrorIs(t, err, ErrInvalidInput)
}
