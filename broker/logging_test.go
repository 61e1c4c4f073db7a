package broker

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observedClient(t *testing.T, baseURL string, opts ...Option) (*Client, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	opts = append(opts, WithLogger(zap.New(core)))
	c := newTestClient(t, baseURL, opts...)
	return c, logs
}

func TestLogCall_QueryLoggedVerbatim(t *testing.T) {
	c, logs := observedClient(t, "https://api.example.com")

	c.LogCall("ParsedWhois", map[string]any{"query": "example.com"})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if got := entries[0].Message; got != "ParsedWhois called with query: example.com" {
		t.Errorf("message = %q", got)
	}
}

func TestLogCall_MapArgsSummarisedBySortedKeys(t *testing.T) {
	c, logs := observedClient(t, "https://api.example.com")

	c.LogCall("IrisInvestigate", map[string]any{
		"params": map[string]string{"ip": "1.2.3.4", "domain": "example.com", "active": "true"},
	})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	want := "IrisInvestigate called with params_keys=[active domain ip]"
	if got := entries[0].Message; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestLogCall_ScalarArgs(t *testing.T) {
	c, logs := observedClient(t, "https://api.example.com")

	c.LogCall("MaliciousURL", map[string]any{"strictness": 1, "fast": "true"})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	want := `MaliciousURL called with fast="true", strictness=1`
	if got := entries[0].Message; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestLogCall_NoArgs(t *testing.T) {
	c, logs := observedClient(t, "https://api.example.com")

	c.LogCall("Ping", nil)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if got := entries[0].Message; got != "Ping called" {
		t.Errorf("message = %q", got)
	}
}

func TestLogCall_DisabledIsSilent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	// Attach the observed logger directly, leaving logging disabled, so the
	// guard is what keeps the core silent.
	c := newTestClient(t, "https://api.example.com")
	c.logger = zap.New(core)

	c.LogCall("ParsedWhois", map[string]any{"query": "example.com"})

	if logs.Len() != 0 {
		t.Fatalf("expected no log entries, got %d", logs.Len())
	}
}

func TestRequest_ErrorsAreLoggedBeforePropagating(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c, logs := observedClient(t, srv.URL)
	_, err := c.Get(context.Background(), "/")
	if err == nil {
		t.Fatal("expected error")
	}

	entries := logs.FilterMessage("request failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 error entry, got %d", len(entries))
	}
}

func TestRequest_SuccessIsNotLoggedAsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	t.Cleanup(srv.Close)

	c, logs := observedClient(t, srv.URL)
	resp, err := c.Get(context.Background(), "/")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	_ = resp.Body.Close()

	if n := logs.FilterMessage("request failed").Len(); n != 0 {
		t.Fatalf("expected no error entries, got %d", n)
	}
}
