package session

import (
	"time"

	cmpplog "github.com/Ucell-first/cmpp30/cmpp/log"
	cmppmetrics "github.com/Ucell-first/cmpp30/cmpp/metrics"
)

// Option configures optional Client collaborators at construction time.
// Functional options fit this client better than folding everything into
// Config: logger, metrics and the clock are independent collaborators, not
// parts of the gateway-facing configuration that config.Config loads from
// the environment.
type Option func(*Client)

// WithLogger overrides the client's logger (default: a no-op logger).
func WithLogger(l cmpplog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics overrides the client's metrics (default: unregistered no-ops).
func WithMetrics(m cmppmetrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithClock overrides the client's time source, for deterministic tests of
// the timeout/keepalive/stall paths.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}
