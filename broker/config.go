package broker

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/robd518/pyapiary/version"
)

// Config configures a broker. Use DefaultConfig() as a baseline.
type Config struct {
	// BaseURL is the absolute URL every endpoint is joined to. Required.
	BaseURL string

	// DefaultHeaders are sent with every request unless a call supplies its
	// own headers, in which case the per-call headers replace these entirely.
	DefaultHeaders http.Header

	// Timeout bounds each underlying HTTP call.
	Timeout time.Duration

	// TrustEnv permits reading proxy settings from the raw process
	// environment. Ignored when LoadEnvConfig yields a non-empty config.
	TrustEnv bool

	// Proxy routes all traffic through a single proxy URL. Takes precedence
	// over any environment-derived proxy.
	Proxy string

	// Mounts binds transports per URL scheme ("http://", "https://"),
	// enabling different proxies for plain and TLS traffic. Takes precedence
	// over Proxy and any environment-derived value. Not supported by
	// AsyncClient.
	Mounts map[string]http.RoundTripper

	// EnableBackoff wraps each call in the retry policy from Retry.
	EnableBackoff bool

	// EnableLogging turns on call and error logging.
	EnableLogging bool

	// Logger is used when EnableLogging is set. If nil, a production zap
	// logger is created.
	Logger *zap.Logger

	// LoadEnvConfig merges the process environment with the optional
	// pyapiary settings file into the broker's EnvConfig (see LoadEnvConfig).
	LoadEnvConfig bool

	// Transport overrides the underlying RoundTripper entirely. Proxy,
	// Mounts and TrustEnv are not applied on top of a caller-supplied
	// transport.
	Transport http.RoundTripper

	// UserAgent is set when a request has no User-Agent header.
	UserAgent string

	// Retry is the default retry policy applied when EnableBackoff is set.
	// Individual calls may override any of its fields.
	Retry RetrySpec

	// MaxErrorBodyBytes limits how many bytes of a non-2xx response body are
	// captured into StatusError. If zero, DefaultMaxErrorBodyBytes is used.
	MaxErrorBodyBytes int64
}

const DefaultMaxErrorBodyBytes int64 = 64 << 10 // 64KiB

// DefaultConfig returns the baseline broker configuration.
func DefaultConfig() Config {
	return Config{
		DefaultHeaders:    make(http.Header),
		Timeout:           10 * time.Second,
		TrustEnv:          true,
		Retry:             DefaultRetrySpec(),
		UserAgent:         "pyapiary/" + version.Get().ShortString(),
		MaxErrorBodyBytes: DefaultMaxErrorBodyBytes,
	}
}
