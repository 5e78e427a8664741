package notes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trackjob-backend/internal/shared/server/middleware"
	"trackjob-backend/internal/shared/server/params"
	"trackjob-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notes", h.list)
	rg.POST("/notes", h.create)
	rg.GET("/notes/user/:userId", h.listByUser)
	rg.GET("/notes/job/:jobId", h.listByJob)
	rg.GET("/notes/:id", h.get)
	rg.PUT("/notes/:id", h.update)
	rg.DELETE("/notes/:id", h.delete)
}

type createRequest struct {
	UserID   string   `json:"userId"`
	JobID    *int64   `json:"jobId"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category Category `json:"category"`
}

type updateRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Category *Category `json:"category"`
}

func (h *Handler) list(c *gin.Context) {
	out, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) listByUser(c *gin.Context) {
	userID := c.Param("userId")
	if !middleware.OwnerAllowed(c, userID) {
		respond.Error(c, http.StatusForbidden, "forbidden", "userId does not match the authenticated user")
		return
	}
	out, err := h.Svc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) listByJob(c *gin.Context) {
	jobID, ok := params.ID(c, "jobId", "job")
	if !ok {
		return
	}
	out, err := h.Svc.ListByJob(c.Request.Context(), jobID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := params.ID(c, "id", "note")
	if !ok {
		return
	}
	n, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, n)
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if !middleware.OwnerAllowed(c, req.UserID) {
		respond.Error(c, http.StatusForbidden, "forbidden", "userId does not match the authenticated user")
		return
	}
	n, err := h.Svc.Create(c.Request.Context(), Note{
		UserID:   req.UserID,
		JobID:    req.JobID,
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, n)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := params.ID(c, "id", "note")
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	n, err := h.Svc.Update(c.Request.Context(), id, Patch(req))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, n)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := params.ID(c, "id", "note")
	if !ok {
		return
	}
	n, err := h.Svc.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Message(c, "Note deleted", n)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Note not found")
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process note request")
	}
}
