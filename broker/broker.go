package broker

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Client is the synchronous request executor. It owns one persistent
// *http.Client for its entire lifetime; the underlying transport is safe for
// concurrent request issuance, so one Client may be shared across goroutines.
type Client struct {
	httpClient *http.Client

	baseURL string
	headers http.Header

	env        EnvConfig
	backoff    bool
	retry      RetrySpec
	maxErrBody int64

	logger  *zap.Logger
	logging bool
}

// New constructs a Client from DefaultConfig() plus the provided options.
func New(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	for _, o := range opts {
		if o != nil {
			o.apply(&cfg)
		}
	}
	return NewWithConfig(cfg)
}

func NewWithConfig(cfg Config) (*Client, error) {
	return newClient(cfg, true)
}

// newClient builds the executor. allowSplit permits installing per-scheme
// mounts from an environment-derived split proxy; the async client passes
// false and runs without a proxy in that case.
func newClient(cfg Config, allowSplit bool) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, NewConfigError("base URL is required")
	}
	if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, NewConfigError("base URL must be absolute: %q", cfg.BaseURL)
	}

	env, err := LoadEnvConfig(cfg.LoadEnvConfig)
	if err != nil {
		return nil, err
	}

	rt, err := buildTransport(cfg, env, allowSplit)
	if err != nil {
		return nil, err
	}

	// Clone headers to avoid caller mutation after construction.
	hdr := make(http.Header)
	for k, vv := range cfg.DefaultHeaders {
		for _, v := range vv {
			hdr.Add(k, v)
		}
	}
	if cfg.UserAgent != "" && hdr.Get("User-Agent") == "" {
		hdr.Set("User-Agent", cfg.UserAgent)
	}

	maxErrBody := cfg.MaxErrorBodyBytes
	if maxErrBody == 0 {
		maxErrBody = DefaultMaxErrorBodyBytes
	}

	logger := zap.NewNop()
	if cfg.EnableLogging {
		logger = cfg.Logger
		if logger == nil {
			if l, err := zap.NewProduction(); err == nil {
				logger = l
			} else {
				logger = zap.NewNop()
			}
		}
	}

	return &Client{
		httpClient: &http.Client{
			Transport: rt,
			Timeout:   cfg.Timeout,
		},
		baseURL:    strings.TrimRight(base, "/"),
		headers:    hdr,
		env:        env,
		backoff:    cfg.EnableBackoff,
		retry:      cfg.Retry.withDefaults(),
		maxErrBody: maxErrBody,
		logger:     logger,
		logging:    cfg.EnableLogging,
	}, nil
}

// buildTransport applies the proxy precedence rules: explicit mounts, then an
// explicit proxy URL, then the environment-derived decision. A caller-supplied
// Transport wins outright and is used untouched. When allowSplit is false an
// environment-derived split proxy yields no proxy at all.
func buildTransport(cfg Config, env EnvConfig, allowSplit bool) (http.RoundTripper, error) {
	if cfg.Transport != nil {
		return cfg.Transport, nil
	}

	if len(cfg.Mounts) > 0 {
		return newMountTransport(cfg.Mounts, DefaultTransport()), nil
	}

	if cfg.Proxy != "" {
		u, err := url.Parse(cfg.Proxy)
		if err != nil || u.Scheme == "" {
			return nil, NewConfigError("invalid proxy URL: %q", cfg.Proxy)
		}
		t := DefaultTransport()
		t.Proxy = http.ProxyURL(u)
		return t, nil
	}

	switch decision := ResolveProxy(env, cfg.TrustEnv); decision.Mode {
	case ProxySplit:
		if !allowSplit {
			return DefaultTransport(), nil
		}
		return newMountTransport(decision.Mounts, DefaultTransport()), nil
	case ProxySingle:
		u, err := url.Parse(decision.URL)
		if err != nil || u.Scheme == "" {
			return nil, NewConfigError("invalid proxy URL from environment: %q", decision.URL)
		}
		t := DefaultTransport()
		t.Proxy = http.ProxyURL(u)
		return t, nil
	default:
		return DefaultTransport(), nil
	}
}

// Env exposes the merged environment config so connectors can resolve their
// API keys from it.
func (c *Client) Env() EnvConfig { return c.env }

// SetHeader extends the client's default headers. Connectors use this to
// inject auth headers after construction; it is not safe to call concurrently
// with in-flight requests.
func (c *Client) SetHeader(key, value string) {
	c.headers.Set(key, value)
}

// Close releases the underlying client's idle connections. The Client must
// not be used afterwards.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Get issues a GET against the endpoint joined to the base URL.
func (c *Client) Get(ctx context.Context, endpoint string, opts ...RequestOption) (*http.Response, error) {
	return c.request(ctx, http.MethodGet, endpoint, opts)
}

// Post issues a POST against the endpoint joined to the base URL. Supply the
// body with WithJSON, WithForm or WithBodyBytes.
func (c *Client) Post(ctx context.Context, endpoint string, opts ...RequestOption) (*http.Response, error) {
	return c.request(ctx, http.MethodPost, endpoint, opts)
}

func (c *Client) request(ctx context.Context, method, endpoint string, opts []RequestOption) (*http.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rc := requestConfig{}
	for _, o := range opts {
		if o != nil {
			o.apply(&rc)
		}
	}
	if rc.jsonErr != nil {
		return nil, rc.jsonErr
	}

	target := JoinURL(c.baseURL, endpoint)
	if len(rc.params) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + rc.params.Encode()
	}

	attempt := func() (*http.Response, error) {
		req, err := c.newHTTPRequest(ctx, method, target, &rc)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, c.statusError(req, resp)
		}
		return resp, nil
	}

	var resp *http.Response
	var err error
	if c.backoff {
		resp, err = doWithRetry(ctx, c.retry.merge(rc.retry), attempt)
	} else {
		resp, err = attempt()
	}
	if err != nil {
		c.logError(method, target, err)
		return nil, err
	}
	return resp, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, method, target string, rc *requestConfig) (*http.Request, error) {
	var body io.Reader
	if rc.bodyBytes != nil {
		body = bytes.NewReader(rc.bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if rc.bodyBytes != nil {
		b := rc.bodyBytes
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b)), nil
		}
	}

	// Per-call headers replace the client defaults entirely; otherwise the
	// defaults apply as-is.
	hdr := c.headers
	if rc.header != nil {
		hdr = rc.header
	}
	for k, vv := range hdr {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}

	if rc.contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", rc.contentType)
	}
	if rc.bearerToken != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+rc.bearerToken)
	}
	if rc.basicSet && req.Header.Get("Authorization") == "" {
		req.SetBasicAuth(rc.basicUser, rc.basicPass)
	}
	return req, nil
}

// statusError captures a bounded copy of a non-2xx response body, releases
// the connection, and leaves the captured bytes readable on the response.
func (c *Client) statusError(req *http.Request, resp *http.Response) *StatusError {
	var raw []byte
	if resp.Body != nil {
		raw, _ = io.ReadAll(io.LimitReader(resp.Body, c.maxErrBody))
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(raw))
	}
	return &StatusError{
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		RawBody:    raw,
		Response:   resp,
	}
}

func (c *Client) logError(method, target string, err error) {
	if !c.logging {
		return
	}
	c.logger.Error("request failed",
		zap.String("method", method),
		zap.String("url", target),
		zap.Error(err),
	)
}
