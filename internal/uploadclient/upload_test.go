package uploadclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu          sync.Mutex
	stored      map[string][]byte
	storedType  map[string]string
	confirmed   []map[string]any
	rejectPut   atomic.Bool
	rejectToken atomic.Bool
	srv         *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{stored: map[string][]byte{}, storedType: map[string]string{}}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /documents/upload-url", func(w http.ResponseWriter, r *http.Request) {
		if f.rejectToken.Load() && r.Header.Get("Authorization") != "Bearer good" {
			writeEnvelope(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "missing token", "code": "unauthorized"})
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["documentType"] != "resume" && body["documentType"] != "coverLetter" {
			writeEnvelope(w, http.StatusBadRequest, map[string]any{"success": false, "error": "bad type", "code": "validation_error"})
			return
		}
		key := body["userId"].(string) + "/" + body["documentType"].(string) + "/1-" + body["fileName"].(string)
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"uploadUrl": f.srv.URL + "/storage/" + key,
			"fileKey":   key,
			"expiresIn": 300,
			"method":    "PUT",
			"headers":   map[string]string{"Content-Type": body["fileType"].(string)},
		}})
	})
	mux.HandleFunc("PUT /storage/", func(w http.ResponseWriter, r *http.Request) {
		if f.rejectPut.Load() {
			http.Error(w, "signature expired", http.StatusForbidden)
			return
		}
		data, _ := io.ReadAll(r.Body)
		key := r.URL.Path[len("/storage/"):]
		f.mu.Lock()
		f.stored[key] = data
		f.storedType[key] = r.Header.Get("Content-Type")
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /documents/confirm", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.confirmed = append(f.confirmed, body)
		f.mu.Unlock()
		writeEnvelope(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{
			"id":         1,
			"userId":     body["userId"],
			"name":       body["fileName"],
			"type":       body["documentType"],
			"s3Key":      body["fileKey"],
			"size":       body["fileSize"],
			"uploadedAt": time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC),
		}})
	})
	mux.HandleFunc("DELETE /documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "1" {
			writeEnvelope(w, http.StatusNotFound, map[string]any{"success": false, "error": "Document not found", "code": "not_found"})
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "message": "Document deleted successfully"})
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestUploadRunReachesDone(t *testing.T) {
	api := newFakeAPI(t)
	client := New(api.srv.URL)

	var seen []State
	up := NewUpload(client, "u1", "resume")
	up.OnChange(func(_, to State) { seen = append(seen, to) })

	data := []byte("%PDF-1.4\n% fake resume body\n")
	doc, err := up.Run(context.Background(), FileFromBytes("resume.pdf", data))
	require.NoError(t, err)
	require.Equal(t, StateDone, up.State())
	require.Equal(t, []State{StateFileChosen, StateTicketReady, StateUploading, StateDone}, seen)
	require.Equal(t, "u1/resume/1-resume.pdf", doc.S3Key)
	require.Equal(t, int64(len(data)), doc.Size)

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Equal(t, data, api.stored["u1/resume/1-resume.pdf"])
	require.Equal(t, "application/pdf", api.storedType["u1/resume/1-resume.pdf"])
	require.Len(t, api.confirmed, 1)
	require.Equal(t, "u1/resume/1-resume.pdf", api.confirmed[0]["fileKey"])
}

func TestUploadFailsWhenStorageRejects(t *testing.T) {
	api := newFakeAPI(t)
	api.rejectPut.Store(true)

	up := NewUpload(New(api.srv.URL), "u1", "resume")
	_, err := up.Run(context.Background(), FileFromBytes("resume.pdf", []byte("hello")))
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusForbidden, apiErr.Status)
	require.Equal(t, StateFailed, up.State())
	require.Equal(t, err, up.Err())
	api.mu.Lock()
	defer api.mu.Unlock()
	require.Empty(t, api.confirmed)
}

func TestUploadTicketErrorCarriesEnvelopeCode(t *testing.T) {
	api := newFakeAPI(t)
	up := NewUpload(New(api.srv.URL), "u1", "portfolio")

	require.NoError(t, up.Choose(FileFromBytes("a.pdf", []byte("x"))))
	err := up.RequestTicket(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "validation_error", apiErr.Code)
	require.Equal(t, StateFailed, up.State())
}

func TestUploadSendsBearerToken(t *testing.T) {
	api := newFakeAPI(t)
	api.rejectToken.Store(true)

	client := New(api.srv.URL)
	_, err := NewUpload(client, "u1", "resume").Run(context.Background(), FileFromBytes("a.txt", []byte("x")))
	require.Error(t, err)

	client.BearerToken = "good"
	_, err = NewUpload(client, "u1", "resume").Run(context.Background(), FileFromBytes("a.txt", []byte("x")))
	require.NoError(t, err)
}

func TestUploadRejectsOutOfOrderCalls(t *testing.T) {
	up := NewUpload(New("http://unused"), "u1", "resume")

	var tErr *TransitionError
	err := up.Send(context.Background())
	require.True(t, errors.As(err, &tErr))
	require.Equal(t, StateIdle, tErr.From)
	require.Equal(t, StateUploading, tErr.To)

	err = up.RequestTicket(context.Background())
	require.True(t, errors.As(err, &tErr))
	require.Equal(t, StateIdle, up.State())
}

func TestUploadChooseValidatesFile(t *testing.T) {
	up := NewUpload(New("http://unused"), "u1", "resume")
	require.Error(t, up.Choose(File{Name: "empty.pdf"}))
	require.Equal(t, StateIdle, up.State())
}

func TestUploadCanRestartAfterFailure(t *testing.T) {
	api := newFakeAPI(t)
	api.rejectPut.Store(true)
	up := NewUpload(New(api.srv.URL), "u1", "resume")
	_, err := up.Run(context.Background(), FileFromBytes("a.pdf", []byte("x")))
	require.Error(t, err)

	api.rejectPut.Store(false)
	_, err = up.Run(context.Background(), FileFromBytes("a.pdf", []byte("x")))
	require.NoError(t, err)
	require.Equal(t, StateDone, up.State())
	require.NoError(t, up.Err())
}

func TestClientDeleteMapsNotFound(t *testing.T) {
	api := newFakeAPI(t)
	client := New(api.srv.URL)

	require.NoError(t, client.Delete(context.Background(), 1))

	err := client.Delete(context.Background(), 999)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Equal(t, "not_found", apiErr.Code)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "ticket_ready", StateTicketReady.String())
	require.Equal(t, "state(42)", State(42).String())
}
