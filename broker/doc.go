// Package broker provides the shared HTTP request layer used by every
// pyapiary connector:
// - one persistent, reusable client per broker with sane transport defaults
// - base URL + endpoint joining and default headers
// - proxy resolution from explicit config or environment variables
// - retry with exponential backoff for transient failures (opt-in)
// - typed errors carrying status, captured body and retryability
// - structured call logging without forcing a logger on callers
package broker
