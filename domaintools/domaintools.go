// Package domaintools provides typed bindings to the DomainTools
// domain-intelligence API. All request handling (proxying, retries, logging)
// is delegated to the shared broker.
package domaintools

import (
	"context"
	"net/http"
	"net/url"

	"github.com/robd518/pyapiary/broker"
)

const DefaultBaseURL = "https://api.domaintools.com"

// apiKeyName is the environment/settings key consulted when no explicit API
// key is supplied.
const apiKeyName = "DOMAINTOOLS_API_KEY"

// Client is the synchronous DomainTools connector.
type Client struct {
	b      *broker.Client
	apiKey string
}

// New constructs a Client. apiKey may be empty, in which case it is resolved
// from the broker's environment config under DOMAINTOOLS_API_KEY (enable
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
		return nil, broker.NewConfigError("API key is required for DomainTools")
	}
	b.SetHeader("X-API-KEY", key)

	return &Client{b: b, apiKey: key}, nil
}

// Close releases the underlying broker.
func (c *Client) Close() error { return c.b.Close() }

// ParsedWhois retrieves the parsed WHOIS record for a domain name or IP
// address.
func (c *Client) ParsedWhois(ctx context.Context, query string, opts ...broker.RequestOption) (*http.Response, error) {
	c.b.LogCall("ParsedWhois", map[string]any{"query": query})
	return c.b.Get(ctx, "v1/"+query+"/whois/parsed", opts...)
}

// ReverseIP lists domain names sharing the same Internet host as the given
// IP address or domain.
func (c *Client) ReverseIP(ctx context.Context, query string, opts ...broker.RequestOption) (*http.Response, error) {
	c.b.LogCall("ReverseIP", map[string]any{"query": query})
	return c.b.Get(ctx, "v1/"+query+"/reverse-ip", opts...)
}

// ReverseNameserver lists domain names pointed at the same primary or
// secondary name server as the given hostname.
func (c *Client) ReverseNameserver(ctx context.Context, query string, opts ...broker.RequestOption) (*http.Response, error) {
	c.b.LogCall("ReverseNameserver", map[string]any{"query": query})
	return c.b.Get(ctx, "v1/"+query+"/name-server-domains", opts...)
}

// IrisInvestigate searches Iris Investigate with one or more base search or
// filter parameters (IP address, SSL hash, email, ...). Parameter names are
// validated against the endpoint's allow-list before any network call; valid
// parameters are forwarded verbatim as query parameters.
func (c *Client) IrisInvestigate(ctx context.Context, params map[string]string, opts ...broker.RequestOption) (*http.Response, error) {
	c.b.LogCall("IrisInvestigate", map[string]any{"params": params})
	if err := validateIrisParams(params); err != nil {
		return nil, err
	}
	q := make(url.Values, len(params))
	for k, v := range params {
		q.Set(k, v)
	}
	return c.b.Get(ctx, "/v1/iris-investigate", append(opts, broker.WithParams(q))...)
}
