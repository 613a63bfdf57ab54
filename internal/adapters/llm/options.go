package llm

import (
	"net/http"
	"time"

	"github.com/amore/clue/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient sets the client used for upstream calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeouts sets the default and long per-route timeouts.
func WithTimeouts(normal, long time.Duration) Option {
	return func(c *Client) {
		if normal > 0 {
			c.timeout = normal
		}
		if long > 0 {
			c.longTimeout = long
		}
	}
}

// WithHealthTimeout bounds each upstream health probe.
func WithHealthTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.healthTimeout = timeout
		}
	}
}

// WithMaxConcurrent limits in-flight requests per upstream.
func WithMaxConcurrent(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxConcurrent = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSessionIDFunc replaces the chat session id generator.
func WithSessionIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newSessionID = fn
		}
	}
}
