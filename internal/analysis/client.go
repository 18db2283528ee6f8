// Package analysis sends extracted page text to the Anthropic Messages API
// and turns the reply into a report.Report.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/biaslens/internal/budget"
	"github.com/hyperifyio/biaslens/internal/extract"
	"github.com/hyperifyio/biaslens/internal/metrics"
	"github.com/hyperifyio/biaslens/internal/report"
)

// Defaults for Options fields left empty.
const (
	DefaultBaseURL    = "https://api.anthropic.com"
	DefaultModel      = "claude-3-5-sonnet-latest"
	DefaultMaxTokens  = 1000
	APIVersion        = "2023-06-01"
	maxReplyBodyBytes = 4 << 20
)

// Options configures a Client.
type Options struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	SystemPrompt string
	HTTPClient   *http.Client
}

// Client calls the Messages endpoint. The API key may be replaced at any time
// with SetAPIKey; a Client without a key is valid but Analyze fails with
// ErrNotConfigured.
type Client struct {
	baseURL   string
	model     string
	maxTokens int
	system    string
	http      *http.Client

	mu     sync.RWMutex
	apiKey string
}

// New returns a Client with defaults applied to empty options.
func New(opts Options) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		model:     strings.TrimSpace(opts.Model),
		maxTokens: opts.MaxTokens,
		system:    opts.SystemPrompt,
		http:      opts.HTTPClient,
		apiKey:    strings.TrimSpace(opts.APIKey),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = DefaultMaxTokens
	}
	if strings.TrimSpace(c.system) == "" {
		c.system = DefaultSystemPrompt
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c
}

// SetAPIKey replaces the credential. An empty key unconfigures the client.
func (c *Client) SetAPIKey(key string) {
	c.mu.Lock()
	c.apiKey = strings.TrimSpace(key)
	c.mu.Unlock()
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.key() != ""
}

// Model returns the model identifier sent with each request.
func (c *Client) Model() string { return c.model }

func (c *Client) key() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

// Analyze sends the page text for analysis and parses the reply. Exactly one
// request is issued; failures are not retried.
func (c *Client) Analyze(ctx context.Context, page extract.PageContent) (report.Report, error) {
	key := c.key()
	if key == "" {
		metrics.AnalysisRequests.WithLabelValues("not_configured").Inc()
		return report.Report{}, ErrNotConfigured
	}

	content, truncated := budget.TruncateToTokens(page.Content, budget.UserMessageTokens(c.model, c.maxTokens, c.system))
	if truncated {
		log.Debug().Str("url", page.URL).Int("chars", len(page.Content)).Int("sent", len(content)).Msg("page text truncated to fit model context")
	}
	payload, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    c.system,
		Messages:  []message{{Role: "user", Content: content}},
	})
	if err != nil {
		return report.Report{}, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return report.Report{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", key)
	req.Header.Set("anthropic-version", APIVersion)

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AnalysisRequests.WithLabelValues("transport").Inc()
		return report.Report{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBodyBytes))
	if err != nil {
		metrics.AnalysisRequests.WithLabelValues("transport").Inc()
		return report.Report{}, fmt.Errorf("%w: read reply: %w", ErrTransport, err)
	}
	log.Debug().Str("url", page.URL).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("analysis service replied")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := classify(resp.StatusCode, string(body))
		metrics.AnalysisRequests.WithLabelValues(se.Kind.String()).Inc()
		log.Warn().Int("status", resp.StatusCode).Str("kind", se.Kind.String()).Msg("analysis service error")
		return report.Report{}, se
	}
	r, err := report.ParseResponse(body)
	if err != nil {
		metrics.AnalysisRequests.WithLabelValues("malformed_response").Inc()
		return report.Report{}, fmt.Errorf("parse analysis reply: %w", err)
	}
	metrics.AnalysisRequests.WithLabelValues("ok").Inc()
	return r, nil
}
