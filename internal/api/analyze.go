package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/biaslens/internal/analysis"
	"github.com/hyperifyio/biaslens/internal/app"
	"github.com/hyperifyio/biaslens/internal/extract"
	"github.com/hyperifyio/biaslens/internal/fetch"
	"github.com/hyperifyio/biaslens/internal/report"
)

// AnalyzeRequest names either a URL for the server to fetch or content the
// host already extracted.
type AnalyzeRequest struct {
	URL     string               `json:"url"`
	Content *extract.PageContent `json:"content"`
}

// AnalyzeResponse is the reply envelope for /v1/analyze.
type AnalyzeResponse struct {
	Success  bool           `json:"success"`
	Analysis *report.Report `json:"analysis,omitempty"`
	Level    *report.Level  `json:"level,omitempty"`
	Cached   bool           `json:"cached"`
	Error    string         `json:"error,omitempty"`
	Kind     string         `json:"kind,omitempty"`
}

func (h *handlers) analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, AnalyzeResponse{Error: "invalid JSON payload: " + err.Error(), Kind: "bad_request"})
		return
	}
	hasURL := strings.TrimSpace(req.URL) != ""
	if hasURL == (req.Content != nil) {
		c.JSON(http.StatusBadRequest, AnalyzeResponse{Error: "provide exactly one of url or content", Kind: "bad_request"})
		return
	}

	var (
		res app.Result
		err error
	)
	if hasURL {
		res, err = h.svc.AnalyzeURL(c.Request.Context(), req.URL)
	} else {
		res, err = h.svc.AnalyzeContent(c.Request.Context(), *req.Content)
	}
	if err != nil {
		status, kind := classify(err)
		if status >= 500 {
			log.Warn().Err(err).Str("kind", kind).Msg("analysis request failed")
		}
		c.JSON(status, AnalyzeResponse{Error: err.Error(), Kind: kind})
		return
	}
	c.JSON(http.StatusOK, AnalyzeResponse{
		Success:  true,
		Analysis: &res.Report,
		Level:    &res.Level,
		Cached:   res.Cached,
	})
}

// classify maps pipeline errors to an HTTP status and a stable kind label.
func classify(err error) (int, string) {
	var se *analysis.ServiceError
	var fe *fetch.StatusError
	switch {
	case errors.Is(err, app.ErrNoInput):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, extract.ErrInsufficientContent):
		return http.StatusUnprocessableEntity, "insufficient_content"
	case errors.Is(err, analysis.ErrNotConfigured):
		return http.StatusServiceUnavailable, "not_configured"
	case errors.As(err, &se):
		if se.Kind == analysis.KindRateLimited {
			return http.StatusTooManyRequests, se.Kind.String()
		}
		return http.StatusBadGateway, se.Kind.String()
	case errors.Is(err, fetch.ErrUnsupportedContent):
		return http.StatusUnprocessableEntity, "unsupported_content"
	case errors.As(err, &fe):
		return http.StatusBadGateway, "fetch_failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		return 499, "canceled"
	default:
		return http.StatusBadGateway, analysis.KindOf(err)
	}
}
