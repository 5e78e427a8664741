package interviews

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
	rg.GET("/interviews", h.list)
	rg.POST("/interviews", h.create)
	rg.GET("/interviews/user/:userId", h.listByUser)
	rg.GET("/interviews/job/:jobId", h.listByJob)
	rg.GET("/interviews/:id", h.get)
	rg.PUT("/interviews/:id", h.update)
	rg.DELETE("/interviews/:id", h.delete)
}

type createRequest struct {
	UserID        string `json:"userId"`
	JobID         *int64 `json:"jobId"`
	InterviewDate string `json:"interviewDate"`
	InterviewType string `json:"interviewType"`
	Interviewer   string `json:"interviewer"`
	Notes         string `json:"notes"`
	Feedback      string `json:"feedback"`
	Status        string `json:"status"`
}

type updateRequest struct {
	InterviewDate *string `json:"interviewDate"`
	InterviewType *string `json:"interviewType"`
	Interviewer   *string `json:"interviewer"`
	Notes         *string `json:"notes"`
	Feedback      *string `json:"feedback"`
	Status        *string `json:"status"`
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
	id, ok := params.ID(c, "id", "interview")
	if !ok {
		return
	}
	iv, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, iv)
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
	iv, err := h.Svc.Create(c.Request.Context(), CreateRequest(req))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, iv)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := params.ID(c, "id", "interview")
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	iv, err := h.Svc.Update(c.Request.Context(), id, UpdateRequest(req))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, iv)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := params.ID(c, "id", "interview")
	if !ok {
		return
	}
	iv, err := h.Svc.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Message(c, "Interview deleted", iv)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Interview not found")
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process interview request")
	}
}
