package local

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"trackjob-backend/internal/shared/server/respond"
	"trackjob-backend/internal/shared/storage/object"
	"trackjob-backend/internal/shared/telemetry"
)

const maxObjectBytes = 25 << 20

// Handler serves signed PUT and GET requests for a local Store.
type Handler struct {
	Store *Store
}

func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.PUT("/objects/*key", h.put)
	rg.GET("/objects/*key", h.get)
}

func (h *Handler) put(c *gin.Context) {
	key, ok := h.authorize(c, http.MethodPut)
	if !ok {
		return
	}
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxObjectBytes)
	size, err := h.Store.Put(c.Request.Context(), key, body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "too_large", "object exceeds size limit")
			return
		}
		telemetry.Error("objects.put.failed", map[string]any{"key": key, "error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to store object")
		return
	}
	telemetry.Debug("objects.put", map[string]any{"key": key, "size": size})
	c.Status(http.StatusOK)
}

func (h *Handler) get(c *gin.Context) {
	key, ok := h.authorize(c, http.MethodGet)
	if !ok {
		return
	}
	f, err := h.Store.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, object.ErrObjectNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "object not found")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to open object")
		return
	}
	defer f.Close()

	c.Header("Content-Type", contentTypeFor(key))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, f); err != nil {
		telemetry.Warn("objects.get.copy_failed", map[string]any{"key": key, "error": err.Error()})
	}
}

func (h *Handler) authorize(c *gin.Context, method string) (string, bool) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if err := object.ValidateKey(key); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_key", "invalid object key")
		return "", false
	}
	err := h.Store.Verify(method, key, c.Query("expires"), c.Query("signature"))
	switch {
	case errors.Is(err, ErrSignatureExpired):
		respond.Error(c, http.StatusForbidden, "expired", "signed url has expired")
		return "", false
	case err != nil:
		respond.Error(c, http.StatusForbidden, "invalid_signature", "signature does not match")
		return "", false
	}
	return key, true
}
