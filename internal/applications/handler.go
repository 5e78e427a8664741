package applications

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trackjob-backend/internal/jobs"
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
	rg.GET("/applications", h.list)
	rg.POST("/applications", h.create)
	rg.GET("/applications/user/:userId", h.listByUser)
	rg.GET("/applications/job/:jobId", h.listByJob)
	rg.GET("/applications/:id", h.get)
	rg.PUT("/applications/:id", h.update)
	rg.DELETE("/applications/:id", h.delete)
}

type createRequest struct {
	UserID      string           `json:"userId"`
	JobID       int64            `json:"jobId"`
	Job         *jobs.JobRequest `json:"job"`
	Status      string           `json:"status"`
	AppliedDate *time.Time       `json:"appliedDate"`
	CoverLetter string           `json:"coverLetter"`
	Resume      string           `json:"resume"`
	Notes       string           `json:"notes"`
	ClerkUser   *clerkUser       `json:"clerkUser"`
}

type clerkUser struct {
	Provider   string `json:"provider"`
	ProviderID string `json:"providerId"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
}

type updateRequest struct {
	Status      *jobs.Status `json:"status"`
	AppliedDate *time.Time   `json:"appliedDate"`
	CoverLetter *string      `json:"coverLetter"`
	Resume      *string      `json:"resume"`
	Notes       *string      `json:"notes"`
}

func (h *Handler) list(c *gin.Context) {
	apps, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, apps)
}

func (h *Handler) listByUser(c *gin.Context) {
	userID := c.Param("userId")
	if !middleware.OwnerAllowed(c, userID) {
		respond.Error(c, http.StatusForbidden, "forbidden", "userId does not match the authenticated user")
		return
	}
	apps, err := h.Svc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, apps)
}

func (h *Handler) listByJob(c *gin.Context) {
	jobID, ok := params.ID(c, "jobId", "job")
	if !ok {
		return
	}
	apps, err := h.Svc.ListByJob(c.Request.Context(), jobID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, apps)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := params.ID(c, "id", "application")
	if !ok {
		return
	}
	app, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, app)
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	in := CreateRequest{
		UserID:      req.UserID,
		JobID:       req.JobID,
		Status:      req.Status,
		AppliedDate: req.AppliedDate,
		CoverLetter: req.CoverLetter,
		Resume:      req.Resume,
		Notes:       req.Notes,
	}
	if req.ClerkUser != nil {
		profile := ClerkUser(*req.ClerkUser)
		in.ClerkUser = &profile
	}
	if !middleware.OwnerAllowed(c, in.OwnerID()) {
		respond.Error(c, http.StatusForbidden, "forbidden", "userId does not match the authenticated user")
		return
	}
	if req.Job != nil {
		job := req.Job.Job()
		in.Job = &job
	}
	app, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, app)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := params.ID(c, "id", "application")
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	app, err := h.Svc.Update(c.Request.Context(), id, Patch{
		Status:      req.Status,
		AppliedDate: req.AppliedDate,
		CoverLetter: req.CoverLetter,
		Resume:      req.Resume,
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, app)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := params.ID(c, "id", "application")
	if !ok {
		return
	}
	app, err := h.Svc.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Message(c, "Application deleted", app)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Application not found")
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process application request")
	}
}
