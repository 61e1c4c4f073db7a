package domaintools

import (
	"context"
	"net/url"

	"github.com/robd518/pyapiary/broker"
)

// AsyncClient is the asynchronous DomainTools connector. Operations resolve
// through single-result channels (see broker.AsyncClient).
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
		return nil, broker.NewConfigError("API key is required for DomainTools")
	}
	b.SetHeader("X-API-KEY", key)

	return &AsyncClient{b: b, apiKey: key}, nil
}

// Close waits for in-flight calls and releases the underlying broker.
func (c *AsyncClient) Close(ctx context.Context) error { return c.b.Close(ctx) }

func (c *AsyncClient) ParsedWhois(ctx context.Context, query string, opts ...broker.RequestOption) <-chan broker.Result {
	c.b.LogCall("ParsedWhois", map[string]any{"query": query})
	return c.b.Get(ctx, "v1/"+query+"/whois/parsed", opts...)
}

func (c *AsyncClient) ReverseIP(ctx context.Context, query string, opts ...broker.RequestOption) <-chan broker.Result {
	c.b.LogCall("ReverseIP", map[string]any{"query": query})
	return c.b.Get(ctx, "v1/"+query+"/reverse-ip", opts...)
}

func (c *AsyncClient) ReverseNameserver(ctx context.Context, query string, opts ...broker.RequestOption) <-chan broker.Result {
	c.b.LogCall("ReverseNameserver", map[string]any{"query": query})
	return c.b.Get(ctx, "v1/"+query+"/name-server-domains", opts...)
}

func (c *AsyncClient) IrisInvestigate(ctx context.Context, params map[string]string, opts ...broker.RequestOption) <-chan broker.Result {
	c.b.LogCall("IrisInvestigate", map[string]any{"params": params})
	if err := validateIrisParams(params); err != nil {
		return broker.Resolved(broker.Result{Err: err})
	}
	q := make(url.Values, len(params))
	for k, v := range params {
		q.Set(k, v)
	}
	return c.b.Get(ctx, "/v1/iris-investigate", append(opts, broker.WithParams(q))...)
}
