package broker

import (
	"net/http"
	"net/url"
	"os"
	"strings"
)

// ProxyMode identifies which of the mutually exclusive proxy variants a
// ProxyDecision carries.
type ProxyMode int

const (
	// ProxyNone disables proxying.
	ProxyNone ProxyMode = iota
	// ProxySingle routes all traffic through one proxy URL.
	ProxySingle
	// ProxySplit routes http:// and https:// traffic through different
	// proxies via per-scheme transports.
	ProxySplit
)

// ProxyDecision is the effective proxy setting derived at construction time.
type ProxyDecision struct {
	Mode ProxyMode

	// URL is the single proxy URL when Mode is ProxySingle.
	URL string

	// Mounts maps "http://" and "https://" to scheme-bound transports when
	// Mode is ProxySplit.
	Mounts map[string]http.RoundTripper
}

// ResolveProxy derives the effective proxy setting from the merged env config
// and, failing that, the raw process environment. Pure function of its
// inputs aside from reading os.Environ when trustEnv applies.
//
// A non-empty env config is the sole source, even when trustEnv is true:
// explicit configuration takes precedence over ambient environment.
func ResolveProxy(env EnvConfig, trustEnv bool) ProxyDecision {
	var source EnvConfig
	switch {
	case len(env) > 0:
		source = env
	case trustEnv:
		source = EnvConfig{}
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				source[k] = v
			}
		}
	default:
		return ProxyDecision{Mode: ProxyNone}
	}

	allProxy := source.Get("ALL_PROXY")
	httpProxy := source.Get("HTTP_PROXY")
	httpsProxy := source.Get("HTTPS_PROXY")

	if httpProxy != "" && httpsProxy != "" && httpProxy != httpsProxy {
		return ProxyDecision{
			Mode: ProxySplit,
			Mounts: map[string]http.RoundTripper{
				"http://":  proxyTransport(httpProxy),
				"https://": proxyTransport(httpsProxy),
			},
		}
	}

	single := allProxy
	if single == "" {
		single = httpsProxy
	}
	if single == "" {
		single = httpProxy
	}
	if single == "" {
		return ProxyDecision{Mode: ProxyNone}
	}
	return ProxyDecision{Mode: ProxySingle, URL: single}
}

// proxyTransport builds a transport bound to a fixed proxy URL.
func proxyTransport(proxyURL string) *http.Transport {
	t := DefaultTransport()
	u, err := url.Parse(proxyURL)
	if err != nil {
		t.Proxy = nil
		return t
	}
	t.Proxy = http.ProxyURL(u)
	return t
}

// mountTransport dispatches requests to a scheme-bound transport, falling
// back to base for schemes without a mount. Keys follow the "scheme://"
// convention ("http://", "https://").
type mountTransport struct {
	mounts map[string]http.RoundTripper
	base   http.RoundTripper
}

func newMountTransport(mounts map[string]http.RoundTripper, base http.RoundTripper) *mountTransport {
	return &mountTransport{mounts: mounts, base: base}
}

func (m *mountTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL != nil {
		if rt, ok := m.mounts[req.URL.Scheme+"://"]; ok && rt != nil {
			return rt.RoundTrip(req)
		}
	}
	return m.base.RoundTrip(req)
}
