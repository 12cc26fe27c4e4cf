// Package config loads the operator-facing configuration for a CMPP 3.0
// client from environment variables, following the env-tag struct pattern
// used throughout this module's sibling services.
package config

import (
	"time"

	"github.com/caarlos0/env/v7"

	cmpperrors "github.com/Ucell-first/cmpp30/cmpp/errors"
)

// Config is the immutable configuration of a session.Client, loaded once at
// construction time.
type Config struct {
	// Address is the gateway's host:port.
	Address string `env:"CMPP_ADDRESS" envDefault:""`

	// SPCode is the 6-digit service-provider short code.
	SPCode string `env:"CMPP_SP_CODE" envDefault:""`

	// GatewayUsername and GatewayPassword are the CONNECT credentials.
	GatewayUsername string `env:"CMPP_GATEWAY_USERNAME" envDefault:""`
	GatewayPassword string `env:"CMPP_GATEWAY_PASSWORD" envDefault:""`

	// GatewaySignature is text appended or prepended to user content.
	GatewaySignature string `env:"CMPP_GATEWAY_SIGNATURE" envDefault:""`

	// ServiceID is the business tag carried on every SUBMIT.
	ServiceID string `env:"CMPP_SERVICE_ID" envDefault:""`

	// DisableLongMessage rejects any submission needing more than one fragment.
	DisableLongMessage bool `env:"CMPP_DISABLE_LONG_MESSAGE" envDefault:"false"`

	// SendLongMessageAsShortMessages splits long text into independent short
	// SMS instead of a concatenated long SMS.
	SendLongMessageAsShortMessages bool `env:"CMPP_SEND_LONG_AS_SHORT" envDefault:"false"`

	// PrepositiveGatewaySignature puts the signature ahead of every fragment
	// when splitting as short messages.
	PrepositiveGatewaySignature bool `env:"CMPP_PREPOSITIVE_SIGNATURE" envDefault:"false"`

	// AttemptRemoveSignature uses the carrier "special" encoding marker and
	// omits the signature from the length budget.
	AttemptRemoveSignature bool `env:"CMPP_ATTEMPT_REMOVE_SIGNATURE" envDefault:"false"`

	// FeeType/FeeCode are billing tags carried on every SUBMIT. Exposed here
	// rather than hardcoded: the carrier-facing meaning of "02"/"05" varies by
	// gateway contract.
	FeeType string `env:"CMPP_FEE_TYPE" envDefault:"02"`
	FeeCode string `env:"CMPP_FEE_CODE" envDefault:"05"`

	// ConnectTimeout bounds the TCP dial.
	ConnectTimeout time.Duration `env:"CMPP_CONNECT_TIMEOUT" envDefault:"10s"`
	// AuthTimeout bounds how long the client waits for CONNECT_RESP.
	AuthTimeout time.Duration `env:"CMPP_AUTH_TIMEOUT" envDefault:"10s"`
	// SubmitTimeout bounds how long Send waits for a single fragment's
	// SUBMIT_RESP.
	SubmitTimeout time.Duration `env:"CMPP_SUBMIT_TIMEOUT" envDefault:"30s"`
	// KeepaliveIdle is the idle interval after which an ACTIVE_TEST is sent.
	KeepaliveIdle time.Duration `env:"CMPP_KEEPALIVE_IDLE" envDefault:"10s"`
	// ReconnectBackoff is the fixed delay between failed connect/auth cycles.
	ReconnectBackoff time.Duration `env:"CMPP_RECONNECT_BACKOFF" envDefault:"3s"`

	// WindowSize bounds the number of in-flight SUBMITs.
	WindowSize int `env:"CMPP_WINDOW_SIZE" envDefault:"16"`
	// PendingQueueLimit bounds admission into the pending queue.
	PendingQueueLimit int `env:"CMPP_PENDING_QUEUE_LIMIT" envDefault:"16"`
}

// Load reads Config from the process environment.
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, cmpperrors.Wrap(cmpperrors.New("failed to load cmpp configuration"), err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields that the session engine relies on being
// well-formed; it does not reach out to the network.
func (c Config) Validate() error {
	if len(c.SPCode) != 6 {
		return cmpperrors.New("sp code must be exactly 6 digits")
	}
	for _, r := range c.SPCode {
		if r < '0' || r > '9' {
			return cmpperrors.New("sp code must be exactly 6 digits")
		}
	}
	if c.Address == "" {
		return cmpperrors.New("address must be set")
	}
	if c.WindowSize <= 0 {
		return cmpperrors.New("window size must be positive")
	}
	if c.PendingQueueLimit <= 0 {
		return cmpperrors.New("pending queue limit must be positive")
	}
	return nil
}
