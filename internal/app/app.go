// Package app wires extraction, caching and analysis into one pipeline and
// owns the configuration layer shared by the CLI and the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/hyperifyio/biaslens/internal/analysis"
	"github.com/hyperifyio/biaslens/internal/cache"
	"github.com/hyperifyio/biaslens/internal/extract"
	"github.com/hyperifyio/biaslens/internal/fetch"
	"github.com/hyperifyio/biaslens/internal/metrics"
	"github.com/hyperifyio/biaslens/internal/report"
)

// Analyzer produces a report for extracted page content.
type Analyzer interface {
	Analyze(ctx context.Context, page extract.PageContent) (report.Report, error)
	Configured() bool
	SetAPIKey(key string)
}

// PageFetcher downloads and parses a page.
type PageFetcher interface {
	Page(ctx context.Context, rawURL string) (*extract.Page, error)
}

// ErrNoInput is returned when an analysis request names neither a URL nor
// page content.
var ErrNoInput = errors.New("no page to analyze")

// Result is one completed analysis.
type Result struct {
	Page   extract.PageContent `json:"page"`
	Report report.Report       `json:"analysis"`
	Level  report.Level        `json:"level"`
	Cached bool                `json:"cached"`
}

// App is the analysis pipeline. It is safe for concurrent use.
type App struct {
	cfg       Config
	extractor extract.Extractor
	fetcher   PageFetcher
	analyzer  Analyzer
	results   *cache.ResultCache
	flights   singleflight.Group
}

// Option customizes New.
type Option func(*App)

// WithAnalyzer replaces the Messages API client.
func WithAnalyzer(a Analyzer) Option { return func(app *App) { app.analyzer = a } }

// WithFetcher replaces the HTTP page fetcher.
func WithFetcher(f PageFetcher) Option { return func(app *App) { app.fetcher = f } }

// WithCache replaces the result cache, e.g. to inject a clock.
func WithCache(c *cache.ResultCache) Option { return func(app *App) { app.results = c } }

// New builds the pipeline from cfg. Zero values in cfg take defaults.
func New(cfg Config, opts ...Option) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = DefaultAnalysisTimeout
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	a := &App{
		cfg:       cfg,
		extractor: extract.New(cfg.ExtractMode, cfg.ExtractMinChars),
	}
	for _, opt := range opts {
		opt(a)
	}
	var hc *http.Client
	if a.fetcher == nil || a.analyzer == nil {
		hc = newHTTPClient()
	}
	if a.fetcher == nil {
		a.fetcher = &fetch.Client{
			HTTPClient:        hc,
			UserAgent:         cfg.UserAgent,
			MaxAttempts:       2,
			PerRequestTimeout: cfg.FetchTimeout,
			MaxConcurrent:     8,
		}
	}
	if a.analyzer == nil {
		a.analyzer = analysis.New(analysis.Options{
			APIKey:       cfg.LLMAPIKey,
			BaseURL:      cfg.LLMBaseURL,
			Model:        cfg.LLMModel,
			MaxTokens:    cfg.LLMMaxTokens,
			SystemPrompt: cfg.SystemPrompt,
			HTTPClient:   hc,
		})
	}
	if a.results == nil {
		a.results = cache.New(cfg.CacheMaxEntries, cfg.CacheMaxAge)
	}
	if !a.analyzer.Configured() {
		log.Warn().Msg("no analysis API key configured; set ANTHROPIC_API_KEY or use the settings endpoint")
	}
	return a, nil
}

// AnalyzeURL fetches rawURL, extracts its content and analyzes it.
func (a *App) AnalyzeURL(ctx context.Context, rawURL string) (Result, error) {
	if strings.TrimSpace(rawURL) == "" {
		return Result{}, ErrNoInput
	}
	page, err := a.fetcher.Page(ctx, rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("fetch page: %w", err)
	}
	return a.analyzePage(ctx, page)
}

// AnalyzeHTML parses HTML read from r as the page at pageURL and analyzes it.
func (a *App) AnalyzeHTML(ctx context.Context, pageURL string, r io.Reader) (Result, error) {
	page, err := extract.NewPage(pageURL, r)
	if err != nil {
		return Result{}, err
	}
	return a.analyzePage(ctx, page)
}

func (a *App) analyzePage(ctx context.Context, page *extract.Page) (Result, error) {
	content, err := a.extractor.Extract(page)
	if err != nil {
		return Result{}, fmt.Errorf("extract %s: %w", page.URL, err)
	}
	return a.AnalyzeContent(ctx, content)
}

// AnalyzeContent analyzes content extracted elsewhere. Results are cached by
// URL and timestamp; a zero timestamp is replaced with the current time.
// Concurrent calls for the same key share one request to the analysis
// service, which runs detached from ctx so an abandoned caller does not waste
// the paid call for the others.
func (a *App) AnalyzeContent(ctx context.Context, content extract.PageContent) (Result, error) {
	if strings.TrimSpace(content.URL) == "" && strings.TrimSpace(content.Content) == "" {
		return Result{}, ErrNoInput
	}
	if utf8.RuneCountInString(content.Content) < a.minChars() {
		return Result{}, extract.ErrInsufficientContent
	}
	if !a.analyzer.Configured() {
		return Result{}, analysis.ErrNotConfigured
	}
	if content.Timestamp.IsZero() {
		content.Timestamp = time.Now()
	}

	key := cache.KeyFor(content.URL, content.Timestamp)
	if r, ok := a.results.Get(key); ok {
		log.Debug().Str("url", content.URL).Msg("returning cached analysis")
		return newResult(content, r, true), nil
	}

	ch := a.flights.DoChan(string(key), func() (any, error) {
		return a.runFlight(ctx, key, content)
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.SharedFlights.Inc()
		}
		if res.Err != nil {
			log.Debug().Err(res.Err).Str("url", content.URL).Msg("analysis failed")
			return Result{}, fmt.Errorf("analyze %s: %w", content.URL, res.Err)
		}
		f := res.Val.(flight)
		return newResult(content, f.report.Clone(), f.cached), nil
	}
}

// flight is the shared outcome of one single-flight call.
type flight struct {
	report report.Report
	cached bool
}

// runFlight re-checks the cache, since a previous flight for key may have
// stored its result after the caller's own lookup, and otherwise calls the
// analyzer on a context detached from ctx and bounded by AnalysisTimeout.
func (a *App) runFlight(ctx context.Context, key cache.Key, content extract.PageContent) (flight, error) {
	if r, ok := a.results.Get(key); ok {
		return flight{report: r, cached: true}, nil
	}
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.AnalysisTimeout)
	defer cancel()
	r, err := a.analyzer.Analyze(callCtx, content)
	if err != nil {
		return flight{}, err
	}
	a.results.Put(key, r)
	return flight{report: r}, nil
}

func newResult(page extract.PageContent, r report.Report, cached bool) Result {
	return Result{Page: page, Report: r, Level: report.LevelFor(r.PolarizationScore), Cached: cached}
}

func (a *App) minChars() int {
	if a.cfg.ExtractMinChars > 0 {
		return a.cfg.ExtractMinChars
	}
	return extract.DefaultMinChars
}

// SetAPIKey reconfigures the analysis credential at runtime.
func (a *App) SetAPIKey(key string) {
	a.analyzer.SetAPIKey(key)
	log.Info().Bool("configured", a.analyzer.Configured()).Msg("analysis API key updated")
}

// Configured reports whether analyses can run.
func (a *App) Configured() bool { return a.analyzer.Configured() }

// ClearCache drops every cached result.
func (a *App) ClearCache() {
	a.results.Clear()
	log.Info().Msg("analysis cache cleared")
}

// CacheStats reports the result cache state.
func (a *App) CacheStats() cache.Stats { return a.results.Stats() }

// Config returns the effective configuration.
func (a *App) Config() Config { return a.cfg }
