// Package params parses path parameters shared by the CRUD handlers.
package params

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"trackjob-backend/internal/shared/server/respond"
)

// ID parses a positive integer path parameter. On failure it writes a 400
// envelope naming the entity and returns false.
func ID(c *gin.Context, name, entity string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid "+entity+" id")
		return 0, false
	}
	return id, true
}
