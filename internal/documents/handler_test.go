package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(&r.RouterGroup)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var env envelope
	if resp.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	}
	return resp, env
}

func TestHandlerUploadURLRejectsInvalidCategory(t *testing.T) {
	gw := &fakeGateway{}
	svc, _ := newTestService(gw)
	r := newTestRouter(svc)

	resp, env := doJSON(t, r, http.MethodPost, "/documents/upload-url",
		`{"fileName":"a.pdf","fileType":"application/pdf","documentType":"photo","userId":"u1"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.False(t, env.Success)
	require.Equal(t, `documentType must be either "resume" or "coverLetter"`, env.Error)
	require.Zero(t, gw.calls())
}

func TestHandlerUploadURLResponseShape(t *testing.T) {
	svc, _ := newTestService(&fakeGateway{})
	r := newTestRouter(svc)

	resp, env := doJSON(t, r, http.MethodPost, "/documents/upload-url",
		`{"fileName":"resume.pdf","fileType":"application/pdf","documentType":"resume","userId":"u1"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	require.True(t, env.Success)

	var data UploadURLResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, "u1/resume/1770112800000-resume.pdf", data.FileKey)
	require.Equal(t, int64(300), data.ExpiresIn)
	require.Equal(t, "PUT", data.Method)
	require.Equal(t, "application/pdf", data.Headers["Content-Type"])
	require.NotEmpty(t, data.UploadURL)
}

func TestHandlerUploadURLProviderError(t *testing.T) {
	svc, _ := newTestService(&fakeGateway{presignErr: errProvider})
	r := newTestRouter(svc)

	resp, env := doJSON(t, r, http.MethodPost, "/documents/upload-url",
		`{"fileName":"resume.pdf","fileType":"application/pdf","documentType":"resume","userId":"u1"}`)
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	require.Contains(t, env.Error, "AccessDenied")
}

func TestHandlerConfirmAndDuplicate(t *testing.T) {
	svc, _ := newTestService(&fakeGateway{})
	r := newTestRouter(svc)
	body := `{"userId":"u1","fileKey":"u1/resume/1770112800000-cv.pdf","fileName":"cv.pdf","fileSize":"12345","documentType":"resume"}`

	resp, env := doJSON(t, r, http.MethodPost, "/documents/confirm", body)
	require.Equal(t, http.StatusCreated, resp.Code)
	var doc DocumentResponse
	require.NoError(t, json.Unmarshal(env.Data, &doc))
	require.Equal(t, int64(1), doc.ID)
	require.Equal(t, int64(12345), doc.Size)
	require.Equal(t, "u1/resume/1770112800000-cv.pdf", doc.S3Key)
	require.Equal(t, "resume", doc.Type)

	resp, env = doJSON(t, r, http.MethodPost, "/documents/confirm", body)
	require.Equal(t, http.StatusConflict, resp.Code)
	require.Equal(t, "conflict", env.Code)
}

func TestHandlerConfirmExpiredTicket(t *testing.T) {
	svc, repo := newTestService(&fakeGateway{})
	svc.Now = func() time.Time { return testNow.Add(20 * time.Minute) }
	r := newTestRouter(svc)

	resp, env := doJSON(t, r, http.MethodPost, "/documents/confirm",
		`{"userId":"u1","fileKey":"u1/resume/1770112800000-cv.pdf","fileName":"cv.pdf","fileSize":10,"documentType":"resume"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	require.Equal(t, "upload_expired", env.Code)
	count, _ := repo.CountByUser(context.Background(), "u1")
	require.Zero(t, count)
}

func TestHandlerUploadURLAcceptsUnderscoreOwner(t *testing.T) {
	gw := &fakeGateway{}
	svc, _ := newTestService(gw)
	r := newTestRouter(svc)

	resp, env := doJSON(t, r, http.MethodPost, "/documents/upload-url",
		`{"fileName":"cv.pdf","fileType":"application/pdf","documentType":"resume","userId":"user_2abcDEF123"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	var data UploadURLResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, "user_2abcDEF123/resume/1770112800000-cv.pdf", data.FileKey)
	require.Len(t, gw.uploads, 1)
}

func TestHandlerConfirmRejectsZeroSize(t *testing.T) {
	svc, repo := newTestService(&fakeGateway{})
	r := newTestRouter(svc)

	resp, _ := doJSON(t, r, http.MethodPost, "/documents/confirm",
		`{"userId":"u1","fileKey":"u1/resume/1770112800000-cv.pdf","fileName":"cv.pdf","fileSize":0,"documentType":"resume"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	count, _ := repo.CountByUser(context.Background(), "u1")
	require.Zero(t, count)
}

func TestHandlerInvalidIDParam(t *testing.T) {
	gw := &fakeGateway{}
	svc, _ := newTestService(gw)
	r := newTestRouter(svc)

	resp, _ := doJSON(t, r, http.MethodDelete, "/documents/abc", "")
	require.Equal(t, http.StatusBadRequest, resp.Code)
	resp, _ = doJSON(t, r, http.MethodGet, "/documents/download/-1", "")
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Zero(t, gw.calls())
}

func TestHandlerDeleteMissingIs404(t *testing.T) {
	gw := &fakeGateway{}
	svc, _ := newTestService(gw)
	r := newTestRouter(svc)

	resp, env := doJSON(t, r, http.MethodDelete, "/documents/999", "")
	require.Equal(t, http.StatusNotFound, resp.Code)
	require.Equal(t, "Document not found", env.Error)
	require.Zero(t, gw.calls())
}

func TestHandlerDeleteStorageFailureIs500(t *testing.T) {
	gw := &fakeGateway{deleteErr: errProvider}
	svc, repo := newTestService(gw)
	doc := seedDocument(t, svc)
	r := newTestRouter(svc)

	resp, _ := doJSON(t, r, http.MethodDelete, "/documents/1", "")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	_, err := repo.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
}
