package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	llmProvider string
	authMode    string
}

func NewHealthHandler(llmProvider, authMode string) *HealthHandler {
	return &HealthHandler{llmProvider: llmProvider, authMode: authMode}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"llm_provider": h.llmProvider,
		"auth_mode":    h.authMode,
	})
}
