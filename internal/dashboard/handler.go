package dashboard

import (
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
	rg.GET("/dashboard/:userId", h.summary)
}

func (h *Handler) summary(c *gin.Context) {
	userID := c.Param("userId")
	if !middleware.OwnerAllowed(c, userID) {
		respond.Error(c, http.StatusForbidden, "forbidden", "userId does not match the authenticated user")
		return
	}
	summary, err := h.Svc.Summary(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load dashboard")
		return
	}
	respond.OK(c, summary)
}
