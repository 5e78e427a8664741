package jobs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

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
	rg.GET("/jobs", h.list)
	rg.POST("/jobs", h.create)
	rg.GET("/jobs/author/:authorId", h.listByAuthor)
	rg.GET("/jobs/:id", h.get)
	rg.PUT("/jobs/:id", h.update)
	rg.DELETE("/jobs/:id", h.delete)
}

// JobRequest is the create payload, shared with nested application creates.
type JobRequest struct {
	CompanyName string  `json:"companyname"`
	JobTitle    string  `json:"jobtitle"`
	JobLink     string  `json:"joblink"`
	Status      string  `json:"status"`
	Comments    string  `json:"comments"`
	Published   bool    `json:"published"`
	AuthorID    *string `json:"authorId"`
}

func (r JobRequest) Job() Job {
	return Job{
		CompanyName: r.CompanyName,
		JobTitle:    r.JobTitle,
		JobLink:     r.JobLink,
		Status:      Status(r.Status),
		Comments:    r.Comments,
		Published:   r.Published,
		AuthorID:    r.AuthorID,
	}
}

type updateRequest struct {
	CompanyName *string `json:"companyname"`
	JobTitle    *string `json:"jobtitle"`
	JobLink     *string `json:"joblink"`
	Status      *Status `json:"status"`
	Comments    *string `json:"comments"`
	Published   *bool   `json:"published"`
}

func (h *Handler) list(c *gin.Context) {
	jobs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, jobs)
}

func (h *Handler) listByAuthor(c *gin.Context) {
	jobs, err := h.Svc.ListByAuthor(c.Request.Context(), c.Param("authorId"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, jobs)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := params.ID(c, "id", "job")
	if !ok {
		return
	}
	job, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, job)
}

func (h *Handler) create(c *gin.Context) {
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	job, err := h.Svc.Create(c.Request.Context(), req.Job())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, job)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := params.ID(c, "id", "job")
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	job, err := h.Svc.Update(c.Request.Context(), id, Patch{
		CompanyName: req.CompanyName,
		JobTitle:    req.JobTitle,
		JobLink:     req.JobLink,
		Status:      req.Status,
		Comments:    req.Comments,
		Published:   req.Published,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, job)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := params.ID(c, "id", "job")
	if !ok {
		return
	}
	job, err := h.Svc.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Message(c, "Job deleted", job)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Job not found")
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process job request")
	}
}
