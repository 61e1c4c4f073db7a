package broker

import (
	"context"
	"net/http"
	"sync"
)

// Result carries the outcome of an asynchronous call. Exactly one of
// Response and Err is set.
type Result struct {
	Response *http.Response
	Err      error
}

// AsyncClient is the asynchronous request executor. Calls run on their own
// goroutine and resolve through a single-buffered channel; retries wait on
// the call's context rather than blocking the caller. Mounts are not
// supported: per-scheme transports require the synchronous Client.
type AsyncClient struct {
	c  *Client
	wg sync.WaitGroup
}

// NewAsync constructs an AsyncClient from DefaultConfig() plus the provided
// options. Configuring Mounts is a ConfigError.
func NewAsync(opts ...Option) (*AsyncClient, error) {
	cfg := DefaultConfig()
	for _, o := range opts {
		if o != nil {
			o.apply(&cfg)
		}
	}
	return NewAsyncWithConfig(cfg)
}

// NewAsyncWithConfig validates and builds the async executor. Explicit Mounts
// are a ConfigError; an environment-derived split proxy (differing
// HTTP_PROXY/HTTPS_PROXY) is ignored rather than mounted.
func NewAsyncWithConfig(cfg Config) (*AsyncClient, error) {
	if len(cfg.Mounts) > 0 {
		return nil, NewConfigError("mounts are not supported by the async client; " +
			"use a single proxy URL or trust the HTTP_PROXY/HTTPS_PROXY environment variables")
	}
	c, err := newClient(cfg, false)
	if err != nil {
		return nil, err
	}
	return &AsyncClient{c: c}, nil
}

// Env exposes the merged environment config (see Client.Env).
func (a *AsyncClient) Env() EnvConfig { return a.c.Env() }

// SetHeader extends the client's default headers (see Client.SetHeader).
func (a *AsyncClient) SetHeader(key, value string) { a.c.SetHeader(key, value) }

// Get issues an asynchronous GET. The returned channel resolves with exactly
// one Result and is then closed.
func (a *AsyncClient) Get(ctx context.Context, endpoint string, opts ...RequestOption) <-chan Result {
	return a.dispatch(ctx, http.MethodGet, endpoint, opts)
}

// Post issues an asynchronous POST. Supply the body with WithJSON, WithForm
// or WithBodyBytes.
func (a *AsyncClient) Post(ctx context.Context, endpoint string, opts ...RequestOption) <-chan Result {
	return a.dispatch(ctx, http.MethodPost, endpoint, opts)
}

func (a *AsyncClient) dispatch(ctx context.Context, method, endpoint string, opts []RequestOption) <-chan Result {
	ch := make(chan Result, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		resp, err := a.c.request(ctx, method, endpoint, opts)
		ch <- Result{Response: resp, Err: err}
		close(ch)
	}()
	return ch
}

// Resolved builds an already-resolved Result channel. Connectors use it to
// surface validation failures through the same channel shape as real calls.
func Resolved(res Result) <-chan Result {
	ch := make(chan Result, 1)
	ch <- res
	close(ch)
	return ch
}

// LogCall logs a connector operation (see Client.LogCall).
func (a *AsyncClient) LogCall(method string, args map[string]any) { a.c.LogCall(method, args) }

// Close waits for in-flight calls to finish, then releases the underlying
// client. It returns the context error if ctx is done first; the client is
// still released in that case.
func (a *AsyncClient) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return a.c.Close()
	case <-ctx.Done():
		_ = a.c.Close()
		return ctx.Err()
	}
}
