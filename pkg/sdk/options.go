package doorpilot

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	token      string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// WithToken sets the bearer token sent with every request. Without a
// token the client is anonymous: chat works in auto/parts modes and
// search only over the parts collection.
func WithToken(token string) Option {
	return optionFunc(func(c *clientConfig) {
		c.token = token
	})
}

// WithHTTPClient replaces the underlying HTTP client. The client must
// not set a global timeout if chat streaming is used; prefer
// WithTimeout, which only applies to non-streaming calls.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithTimeout sets the per-call timeout for Diagnose, Search and Health.
// Chat is exempt: the stream stays open as long as tokens flow.
// Default: 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
