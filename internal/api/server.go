// Package api exposes the analysis pipeline over HTTP for browser hosts and
// other local clients.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/biaslens/internal/app"
	"github.com/hyperifyio/biaslens/internal/cache"
	"github.com/hyperifyio/biaslens/internal/extract"
	"github.com/hyperifyio/biaslens/internal/metrics"
)

// Service is the part of app.App the handlers use.
type Service interface {
	AnalyzeURL(ctx context.Context, rawURL string) (app.Result, error)
	AnalyzeContent(ctx context.Context, content extract.PageContent) (app.Result, error)
	SetAPIKey(key string)
	Configured() bool
	ClearCache()
	CacheStats() cache.Stats
}

// NewRouter constructs a Gin engine with every route registered.
func NewRouter(svc Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	h := &handlers{svc: svc}
	RegisterHealthRoutes(r, svc)
	v1 := r.Group("/v1")
	v1.POST("/analyze", h.analyze)
	v1.PUT("/settings", h.updateSettings)
	v1.DELETE("/cache", h.clearCache)
	v1.GET("/cache/stats", h.cacheStats)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	return r
}

type handlers struct {
	svc Service
}

// requestLogger logs one debug line per request through zerolog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	}
}

// Serve runs handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http api listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
