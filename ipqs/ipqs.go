// Package ipqs provides typed bindings to the IPQualityScore Malicious URL
// Scanner API. Request handling is delegated to the shared broker.
package ipqs

import (
	"context"
	"net/http"
	"net/url"

	"github.com/robd518/pyapiary/broker"
)

const DefaultBaseURL = "https://ipqualityscore.com/api/json"

// apiKeyName is the environment/settings key consulted when no explicit API
// key is supplied.
const apiKeyName = "IPQS_API_KEY"

// Client is the synchronous IPQS connector.
type Client struct {
	b      *broker.Client
	apiKey string
}

// New constructs a Client. apiKey may be empty, in which case it is resolved
// from the broker's environment config under IPQS_API_KEY (enable
// broker.WithEnvConfig(true) for that). A missing key is a ConfigError.
func New(apiKey string, opts ...broker.Option) (*Client, error) {
	b, err := broker.New(append([]broker.Option{broker.WithBaseURL(DefaultBaseURL)}, opts...)...)
	if err != nil {
		return nil, err
	}

	key := apiKey
	if key == "" {
		key = b.Env().Get(apiKeyName)
	}
	if key == "" {
		_ = b.Close()
		return nil, broker.NewConfigError("API key is required for IPQS")
	}
	b.SetHeader("Content-Type", "application/x-www-form-urlencoded")

	return &Client{b: b, apiKey: key}, nil
}

// Close releases the underlying broker.
func (c *Client) Close() error { return c.b.Close() }

// MaliciousURL scans a URL with the Malicious URL Scanner. extra carries
// optional scan parameters such as "strictness" or "fast"; the API key is
// always included in the form body.
func (c *Client) MaliciousURL(ctx context.Context, query string, extra map[string]string, opts ...broker.RequestOption) (*http.Response, error) {
	c.b.LogCall("MaliciousURL", map[string]any{"query": query})
	return c.b.Post(ctx, "/url/", append(opts, broker.WithForm(scanForm(c.apiKey, query, extra)))...)
}

// scanForm builds the scan request body: the URL under test, the API key and
// any optional scan parameters.
func scanForm(apiKey, query string, extra map[string]string) url.Values {
	form := url.Values{}
	form.Set("url", query)
	form.Set("key", apiKey)
	for k, v := range extra {
		form.Set(k, v)
	}
	return form
}
