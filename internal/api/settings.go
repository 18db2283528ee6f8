package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SettingsRequest updates runtime settings. An empty apiKey unconfigures the
// analysis client.
type SettingsRequest struct {
	APIKey *string `json:"apiKey"`
}

func (h *handlers) updateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "kind": "bad_request"})
		return
	}
	if req.APIKey == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "apiKey is required", "kind": "bad_request"})
		return
	}
	h.svc.SetAPIKey(*req.APIKey)
	c.JSON(http.StatusOK, gin.H{"success": true, "configured": h.svc.Configured()})
}

func (h *handlers) clearCache(c *gin.Context) {
	h.svc.ClearCache()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) cacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.CacheStats())
}
