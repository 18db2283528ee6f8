package app

import (
	"time"

	"github.com/hyperifyio/biaslens/internal/analysis"
	"github.com/hyperifyio/biaslens/internal/cache"
	"github.com/hyperifyio/biaslens/internal/extract"
)

// Output formats accepted by Config.Format.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Defaults not owned by another package.
const (
	DefaultAnalysisTimeout = 60 * time.Second
	DefaultFetchTimeout    = 15 * time.Second
	DefaultUserAgent       = "biaslens/1.0 (+https://github.com/hyperifyio/biaslens)"
	DefaultFormat          = FormatMarkdown
)

// Config holds runtime configuration for the application.
type Config struct {
	// Input: exactly one of URL or HTMLPath for a one-shot analysis.
	URL      string
	HTMLPath string
	PageURL  string

	// Output
	OutputPath    string
	OutputPDFPath string
	Format        string

	// HTTP API
	ServeAddr string

	// LLM
	LLMBaseURL      string
	LLMModel        string
	LLMAPIKey       string
	LLMMaxTokens    int
	SystemPrompt    string
	AnalysisTimeout time.Duration

	// Extraction and fetching
	ExtractMinChars int
	ExtractMode     string
	FetchTimeout    time.Duration
	UserAgent       string

	// Result cache
	CacheMaxEntries int
	CacheMaxAge     time.Duration

	// Logging
	LogFile string
	Verbose bool
}

// DefaultConfig returns the configuration used when no file, environment or
// flag supplies a value.
func DefaultConfig() Config {
	return Config{
		Format:          DefaultFormat,
		LLMBaseURL:      analysis.DefaultBaseURL,
		LLMModel:        analysis.DefaultModel,
		LLMMaxTokens:    analysis.DefaultMaxTokens,
		AnalysisTimeout: DefaultAnalysisTimeout,
		ExtractMinChars: extract.DefaultMinChars,
		ExtractMode:     extract.ModeCascade,
		FetchTimeout:    DefaultFetchTimeout,
		UserAgent:       DefaultUserAgent,
		CacheMaxEntries: cache.DefaultMaxEntries,
		CacheMaxAge:     cache.DefaultMaxAge,
	}
}
