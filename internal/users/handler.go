package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trackjob-backend/internal/shared/server/middleware"
	"trackjob-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users", h.list)
	rg.POST("/users", h.create)
	rg.POST("/users/ensure", h.ensure)
	rg.GET("/users/:id", h.get)
	rg.PUT("/users/:id", h.update)
	rg.DELETE("/users/:id", h.delete)
	rg.GET("/users/:id/profile", h.profile)
	rg.POST("/users/:id/profile", h.saveProfile)
}

type userRequest struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type updateRequest struct {
	Name          *string `json:"name"`
	Avatar        *string `json:"avatar"`
	EmailVerified *bool   `json:"emailVerified"`
}

type profileRequest struct {
	Bio string `json:"bio"`
}

func (h *Handler) list(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, users)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := ownedID(c)
	if !ok {
		return
	}
	user, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, user)
}

func (h *Handler) create(c *gin.Context) {
	req, ok := bindUser(c)
	if !ok {
		return
	}
	user, err := h.Svc.Create(c.Request.Context(), User{ID: req.ID, Email: req.Email, Name: req.Name, Avatar: req.Avatar})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, user)
}

func (h *Handler) ensure(c *gin.Context) {
	req, ok := bindUser(c)
	if !ok {
		return
	}
	user, err := h.Svc.Ensure(c.Request.Context(), User{ID: req.ID, Email: req.Email, Name: req.Name, Avatar: req.Avatar})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, user)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := ownedID(c)
	if !ok {
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	user, err := h.Svc.Update(c.Request.Context(), id, Patch{Name: req.Name, Avatar: req.Avatar, EmailVerified: req.EmailVerified})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, user)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := ownedID(c)
	if !ok {
		return
	}
	user, err := h.Svc.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Message(c, "User deleted", user)
}

func (h *Handler) profile(c *gin.Context) {
	id, ok := ownedID(c)
	if !ok {
		return
	}
	p, err := h.Svc.Profile(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, p)
}

func (h *Handler) saveProfile(c *gin.Context) {
	id, ok := ownedID(c)
	if !ok {
		return
	}
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	p, err := h.Svc.SaveProfile(c.Request.Context(), id, req.Bio)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Created(c, p)
}

func bindUser(c *gin.Context) (userRequest, bool) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body")
		return userRequest{}, false
	}
	if !middleware.OwnerAllowed(c, req.ID) {
		respond.Error(c, http.StatusForbidden, "forbidden", "id does not match the authenticated user")
		return userRequest{}, false
	}
	return req, true
}

func ownedID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !middleware.OwnerAllowed(c, id) {
		respond.Error(c, http.StatusForbidden, "forbidden", "id does not match the authenticated user")
		return "", false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "User not found")
	case errors.Is(err, ErrProfileNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Profile not found")
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", err.Error())
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process user request")
	}
}
