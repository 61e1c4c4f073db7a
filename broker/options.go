package broker

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Option interface{ apply(*Config) }

type optionFunc func(*Config)

func (f optionFunc) apply(c *Config) { f(c) }

func WithBaseURL(baseURL string) Option {
	return optionFunc(func(c *Config) { c.BaseURL = baseURL })
}

func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *Config) { c.Timeout = d })
}

func WithDefaultHeader(key, value string) Option {
	return optionFunc(func(c *Config) {
		if c.DefaultHeaders == nil {
			c.DefaultHeaders = make(http.Header)
		}
		c.DefaultHeaders.Set(key, value)
	})
}

func WithDefaultHeaders(h http.Header) Option {
	return optionFunc(func(c *Config) {
		if h == nil {
			return
		}
		if c.DefaultHeaders == nil {
			c.DefaultHeaders = make(http.Header)
		}
		for k, vv := range h {
			for _, v := range vv {
				c.DefaultHeaders.Add(k, v)
			}
		}
	})
}

// WithTrustEnv controls whether proxy settings may be read from the raw
// process environment. Defaults to true.
func WithTrustEnv(trust bool) Option {
	return optionFunc(func(c *Config) { c.TrustEnv = trust })
}

// WithProxy routes all traffic through a single proxy URL.
func WithProxy(proxyURL string) Option {
	return optionFunc(func(c *Config) { c.Proxy = proxyURL })
}

// WithMounts binds transports per URL scheme ("http://", "https://").
func WithMounts(mounts map[string]http.RoundTripper) Option {
	return optionFunc(func(c *Config) { c.Mounts = mounts })
}

// WithBackoff enables retrying transient failures with the default policy.
func WithBackoff(enable bool) Option {
	return optionFunc(func(c *Config) { c.EnableBackoff = enable })
}

// WithRetry enables backoff with a caller-supplied policy. Zero-valued fields
// of spec fall back to the defaults.
func WithRetry(spec RetrySpec) Option {
	return optionFunc(func(c *Config) {
		c.EnableBackoff = true
		c.Retry = spec.withDefaults()
	})
}

// WithLogging enables call and error logging.
func WithLogging(enable bool) Option {
	return optionFunc(func(c *Config) { c.EnableLogging = enable })
}

// WithLogger enables logging through the provided zap logger.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(c *Config) {
		c.EnableLogging = true
		c.Logger = logger
	})
}

// WithEnvConfig loads the merged environment/settings-file config at
// construction (see LoadEnvConfig).
func WithEnvConfig(load bool) Option {
	return optionFunc(func(c *Config) { c.LoadEnvConfig = load })
}

// WithTransport overrides the underlying RoundTripper entirely.
func WithTransport(rt http.RoundTripper) Option {
	return optionFunc(func(c *Config) { c.Transport = rt })
}

func WithUserAgent(ua string) Option {
	return optionFunc(func(c *Config) { c.UserAgent = ua })
}

func WithMaxErrorBodyBytes(n int64) Option {
	return optionFunc(func(c *Config) { c.MaxErrorBodyBytes = n })
}
