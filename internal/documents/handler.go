package documents

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"trackjob-backend/internal/shared/server/middleware"
	"trackjob-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/upload-url", h.uploadURL)
	rg.POST("/documents/confirm", h.confirm)
	rg.GET("/documents/download/:id", h.download)
	rg.GET("/documents/:userId", h.list)
	rg.DELETE("/documents/:id", h.delete)
}

func (h *Handler) uploadURL(c *gin.Context) {
	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if !middleware.OwnerAllowed(c, req.UserID) {
		respond.Error(c, http.StatusForbidden, "forbidden", "userId does not match the authenticated user")
		return
	}

	ticket, err := h.Svc.RequestUpload(c.Request.Context(), UploadRequest{
		FileName:     req.FileName,
		FileType:     req.FileType,
		DocumentType: req.DocumentType,
		UserID:       req.UserID,
		FileSize:     int64(req.FileSize),
		RequestID:    middleware.RequestIDFromContext(c),
	})
	if err != nil {
		writeError(c, err, "failed to generate upload url")
		return
	}
	c.Set("fileKey", ticket.FileKey)
	respond.OK(c, toUploadURLResponse(ticket))
}

func (h *Handler) confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if !middleware.OwnerAllowed(c, req.UserID) {
		respond.Error(c, http.StatusForbidden, "forbidden", "userId does not match the authenticated user")
		return
	}
	c.Set("fileKey", req.FileKey)

	doc, err := h.Svc.Confirm(c.Request.Context(), ConfirmRequest{
		UserID:       req.UserID,
		FileKey:      req.FileKey,
		FileName:     req.FileName,
		FileSize:     int64(req.FileSize),
		DocumentType: req.DocumentType,
	})
	if err != nil {
		writeError(c, err, "failed to confirm upload")
		return
	}
	c.Set("documentId", doc.ID)
	respond.Created(c, toResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	userID := c.Param("userId")
	if !middleware.OwnerAllowed(c, userID) {
		respond.Error(c, http.StatusForbidden, "forbidden", "userId does not match the authenticated user")
		return
	}

	docs, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "failed to fetch documents")
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.OK(c, resp)
}

func (h *Handler) download(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ticket, err := h.Svc.Download(c.Request.Context(), id, middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to generate download url")
		return
	}
	respond.OK(c, toDownloadResponse(ticket))
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.Svc.Delete(c.Request.Context(), id, middleware.UserIDFromContext(c)); err != nil {
		writeError(c, err, "failed to delete document")
		return
	}
	respond.Message(c, "Document deleted successfully", nil)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid document id")
		return 0, false
	}
	c.Set("documentId", id)
	return id, true
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", detail(err, ErrInvalidInput))
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Document not found")
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", "document already confirmed for this fileKey")
	case errors.Is(err, ErrUploadMissing):
		respond.Error(c, http.StatusUnprocessableEntity, "upload_missing", err.Error())
	case errors.Is(err, ErrUploadExpired):
		respond.Error(c, http.StatusUnprocessableEntity, "upload_expired", "upload ticket expired; request a new upload URL")
	case errors.Is(err, ErrSizeMismatch):
		respond.Error(c, http.StatusUnprocessableEntity, "size_mismatch", detail(err, ErrSizeMismatch))
	case errors.Is(err, ErrStorage):
		respond.Error(c, http.StatusInternalServerError, "storage_error", fallback+": "+detail(err, ErrStorage))
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback)
	}
}
