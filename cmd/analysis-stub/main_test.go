package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/hyperifyio/biaslens/internal/analysis"
	"github.com/hyperifyio/biaslens/internal/extract"
)

func TestStub_ServesParsableReply(t *testing.T) {
	srv := httptest.NewServer(newMux(0))
	defer srv.Close()

	c := analysis.New(analysis.Options{APIKey: "stub", BaseURL: srv.URL})
	rep, err := c.Analyze(context.Background(), extract.PageContent{URL: "https://news.example.com/a", Title: "Policy", Content: "Some article text about a policy debate."})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.PolarizationScore != 72 {
		t.Fatalf("score = %d", rep.PolarizationScore)
	}
	if len(rep.Biases) != 2 || len(rep.MissingPerspectives) != 2 || len(rep.AlternativeViewpoints) != 2 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.AlternativeViewpoints[0].URL != "https://example.org/impact" {
		t.Fatalf("viewpoint url = %q", rep.AlternativeViewpoints[0].URL)
	}
}

func TestStub_ForcedStatus(t *testing.T) {
	srv := httptest.NewServer(newMux(429))
	defer srv.Close()

	c := analysis.New(analysis.Options{APIKey: "stub", BaseURL: srv.URL})
	_, err := c.Analyze(context.Background(), extract.PageContent{Content: "text"})
	if !errors.Is(err, analysis.ErrRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}
}

func TestStub_MissingKey(t *testing.T) {
	srv := httptest.NewServer(newMux(0))
	defer srv.Close()

	c := analysis.New(analysis.Options{APIKey: "stub", BaseURL: srv.URL})
	c.SetAPIKey("")
	if _, err := c.Analyze(context.Background(), extract.PageContent{Content: "text"}); !errors.Is(err, analysis.ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
}
