package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hyperifyio/biaslens/internal/app"
)

// RegisterHealthRoutes registers the liveness endpoint.
func RegisterHealthRoutes(r *gin.Engine, svc Service) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"configured": svc.Configured(),
			"build":      app.Build(),
		})
	})
}
