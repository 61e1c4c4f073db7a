package broker

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

type RequestOption interface{ apply(*requestConfig) }

type requestOptionFunc func(*requestConfig)

func (f requestOptionFunc) apply(c *requestConfig) { f(c) }

type requestConfig struct {
	params url.Values

	// header, when non-nil, replaces the client's default headers entirely.
	header http.Header

	bodyBytes   []byte
	contentType string
	jsonErr     error

	bearerToken string
	basicUser   string
	basicPass   string
	basicSet    bool

	retry *RetrySpec
}

// WithParams adds query parameters to the request.
func WithParams(values url.Values) RequestOption {
	return requestOptionFunc(func(c *requestConfig) {
		if values == nil {
			return
		}
		if c.params == nil {
			c.params = make(url.Values)
		}
		for k, vv := range values {
			for _, v := range vv {
				c.params.Add(k, v)
			}
		}
	})
}

// WithParam adds a single query parameter.
func WithParam(key, value string) RequestOption {
	return requestOptionFunc(func(c *requestConfig) {
		if c.params == nil {
			c.params = make(url.Values)
		}
		c.params.Add(key, value)
	})
}

// WithHeaders sets the complete header set for this call. When supplied, the
// client's default headers are not sent at all.
func WithHeaders(h http.Header) RequestOption {
	return requestOptionFunc(func(c *requestConfig) {
		if h == nil {
			return
		}
		if c.header == nil {
			c.header = make(http.Header)
		}
		for k, vv := range h {
			for _, v := range vv {
				c.header.Add(k, v)
			}
		}
	})
}

// WithHeader sets a single header, replacing the client's default headers for
// this call (see WithHeaders).
func WithHeader(key, value string) RequestOption {
	return requestOptionFunc(func(c *requestConfig) {
		if c.header == nil {
			c.header = make(http.Header)
		}
		c.header.Set(key, value)
	})
}

// WithJSON sets the request body to the JSON encoding of v (retry-safe).
func WithJSON(v any) RequestOption {
	return requestOptionFunc(func(c *requestConfig) {
		b, err := json.Marshal(v)
		if err != nil {
			c.jsonErr = err
			return
		}
		c.bodyBytes = b
		c.contentType = "application/json"
	})
}

// WithForm sets the request body to the URL-encoded form (retry-safe).
func WithForm(form url.Values) RequestOption {
	return requestOptionFunc(func(c *requestConfig) {
		c.bodyBytes = []byte(form.Encode())
		c.contentType = "application/x-www-form-urlencoded"
	})
}

// WithBodyBytes sets a raw request body (retry-safe).
func WithBodyBytes(b []byte) RequestOption {
	return requestOptionFunc(func(c *requestConfig) {
		c.bodyBytes = append([]byte(nil), b...)
	})
}

func WithBearerToken(token string) RequestOption {
	return requestOptionFunc(func(c *requestConfig) { c.bearerToken = token })
}

func WithBasicAuth(user, pass string) RequestOption {
	return requestOptionFunc(func(c *requestConfig) {
		c.basicUser, c.basicPass, c.basicSet = user, pass, true
	})
}

// WithRetrySpec overrides the client retry policy for this call only.
// Zero-valued fields keep the client's values.
func WithRetrySpec(spec RetrySpec) RequestOption {
	return requestOptionFunc(func(c *requestConfig) { c.retry = &spec })
}

// JoinURL joins an endpoint to a base URL with exactly one slash between
// them, regardless of how many trailing slashes the base or leading slashes
// the endpoint carry.
func JoinURL(baseURL, endpoint string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
}
