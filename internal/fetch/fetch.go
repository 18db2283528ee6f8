// Package fetch downloads HTML pages for extraction with bounded retries,
// redirect limits and a per-client concurrency cap.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/biaslens/internal/extract"
)

// DefaultMaxBodyBytes caps how much of a page body is read.
const DefaultMaxBodyBytes = 5 << 20

// StatusError reports a non-2xx response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
}

// ErrUnsupportedContent is returned for non-HTML responses and non-HTTP URLs.
var ErrUnsupportedContent = errors.New("unsupported content")

// Client wraps http.Client and provides timeouts and limited retry on
// transient errors.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each attempt.
	PerRequestTimeout time.Duration
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
	// MaxConcurrent limits in-flight requests. Zero means unlimited.
	MaxConcurrent int
	// MaxBodyBytes truncates larger bodies. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64

	limiter     chan struct{}
	limiterOnce sync.Once
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

// Page fetches rawURL and parses it into an extraction page. The final URL
// after redirects is used as the page URL.
func (c *Client) Page(ctx context.Context, rawURL string) (*extract.Page, error) {
	res, err := c.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return extract.NewPage(res.finalURL, bytes.NewReader(res.body))
}

// fetch issues a GET with the client's user agent and retries transient
// failures up to MaxAttempts.
func (c *Client) fetch(ctx context.Context, rawURL string) (response, error) {
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		res, err := c.tryOnce(ctx, rawURL)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 {
			break
		}
		log.Debug().Str("url", rawURL).Int("attempt", i+1).Err(err).Msg("transient fetch error, retrying")
		select {
		case <-ctx.Done():
			return response{}, ctx.Err()
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	return response{}, lastErr
}

type response struct {
	body        []byte
	contentType string
	finalURL    string
}

func (c *Client) tryOnce(ctx context.Context, rawURL string) (response, error) {
	c.acquire()
	defer c.release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return response{}, fmt.Errorf("%w: URL scheme %q", ErrUnsupportedContent, req.URL.Scheme)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.1")

	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), c.PerRequestTimeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{}, &StatusError{URL: rawURL, Status: resp.StatusCode}
	}
	contentType := resp.Header.Get("Content-Type")
	if !isAllowedHTMLContentType(contentType) {
		return response{}, fmt.Errorf("%w: content type %q", ErrUnsupportedContent, contentType)
	}
	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return response{}, fmt.Errorf("read body: %w", err)
	}
	log.Debug().Str("url", rawURL).Int("status", resp.StatusCode).Int("bytes", len(b)).Msg("fetched page")
	return response{body: b, contentType: contentType, finalURL: resp.Request.URL.String()}, nil
}

// isTransient treats 5xx responses and per-attempt deadlines as retryable.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Status >= 500
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

func (c *Client) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
	}
}
