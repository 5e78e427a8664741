package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the body shape shared by every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSON writes a successful envelope with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, Envelope{Success: true, Data: payload})
}

// OK writes a 200 OK envelope.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Created writes a 201 Created envelope.
func Created(c *gin.Context, payload any) {
	JSON(c, http.StatusCreated, payload)
}

// Message writes a 200 envelope carrying a human-readable message and optional data.
func Message(c *gin.Context, message string, payload any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: payload})
}
