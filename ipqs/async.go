package ipqs

import (
	"context"

	"github.com/robd518/pyapiary/broker"
)

// AsyncClient is the asynchronous IPQS connector.
type AsyncClient struct {
	b      *broker.AsyncClient
	apiKey string
}

// NewAsync constructs an AsyncClient. Key resolution follows New. Configuring
// broker mounts is a ConfigError.
func NewAsync(apiKey string, opts ...broker.Option) (*AsyncClient, error) {
	b, err := broker.NewAsync(append([]broker.Option{broker.WithBaseURL(DefaultBaseURL)}, opts...)...)
	if err != nil {
		return nil, err
	}

	key := apiKey
	if key == "" {
		key = b.Env().Get(apiKeyName)
	}
	if key == "" {
		_ = b.Close(context.Background())
		return nil, broker.NewConfigError("API key is required for IPQS")
	}
	b.SetHeader("Content-Type", "application/x-www-form-urlencoded")

	return &AsyncClient{b: b, apiKey: key}, nil
}

// Close waits for in-flight calls and releases the underlying broker.
func (c *AsyncClient) Close(ctx context.Context) error { return c.b.Close(ctx) }

// MaliciousURL asynchronously scans a URL with the Malicious URL Scanner.
func (c *AsyncClient) MaliciousURL(ctx context.Context, query string, extra map[string]string, opts ...broker.RequestOption) <-chan broker.Result {
	c.b.LogCall("MaliciousURL", map[string]any{"query": query})
	return c.b.Post(ctx, "/url/", append(opts, broker.WithForm(scanForm(c.apiKey, query, extra)))...)
}
