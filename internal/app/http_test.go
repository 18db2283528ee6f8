package app

import (
	"net/http"
	"testing"
)

func TestNewHTTPClient_Config(t *testing.T) {
	c := newHTTPClient()
	if c.Timeout != 0 {
		t.Fatalf("client timeout should be left to request contexts, got %v", c.Timeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("unexpected transport type %T", c.Transport)
	}
	if tr.Proxy == nil {
		t.Fatal("expected proxy from environment")
	}
	if tr.MaxIdleConnsPerHost < 2 {
		t.Fatalf("expected pooled connections per host, got %d", tr.MaxIdleConnsPerHost)
	}
	if !tr.ForceAttemptHTTP2 {
		t.Fatal("expected HTTP/2 attempts")
	}
}
