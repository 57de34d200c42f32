package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yksanjo/soundraw-podcast-music/internal/mcp"
)

// ListTools returns the tool catalogue served over MCP
func ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"server": gin.H{
			"name":    mcp.ServerName,
			"version": mcp.ServerVersion,
		},
		"tools": []interface{}{mcp.Tool()},
	})
}
