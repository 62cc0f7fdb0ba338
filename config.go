package twitter

import (
	"log/slog"
	"time"

	"github.com/anatolykoptev/go-stealth/ratelimit"
	"github.com/google/uuid"
)

// DecoderConfig holds the configuration for a Decoder.
type DecoderConfig struct {
	// Logger receives parse-failure and shape-mismatch warnings.
	// nil logs through slog.Default() at the time of the call.
	Logger *slog.Logger

	// LogBodyLimit caps how much of an offending body is logged.
	// Default: 500
	LogBodyLimit int

	// StreamEndSentinel is the literal that ends a stream.
	// Default: DefaultStreamEndSentinel
	StreamEndSentinel string

	// DisableInlineEntities turns off parsing entities out of the text of
	// statuses whose payload has no entities object.
	DisableInlineEntities bool

	// NewTraceID generates the trace id of degraded records.
	// Default: uuid.NewString
	NewTraceID func() string
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *DecoderConfig) defaults() {
	if cfg.LogBodyLimit <= 0 {
		cfg.LogBodyLimit = 500
	}
	if cfg.StreamEndSentinel == "" {
		cfg.StreamEndSentinel = DefaultStreamEndSentinel
	}
	if cfg.NewTraceID == nil {
		cfg.NewTraceID = uuid.NewString
	}
}

// ClientConfig holds all configuration for the Twitter client.
type ClientConfig struct {
	// Accounts is the list of Twitter accounts to use.
	Accounts []*Account

	// DefaultProxy is the proxy URL for accounts without per-account proxies.
	DefaultProxy string

	// BaseURL overrides the REST API root.
	// Default: https://api.twitter.com/1.1
	BaseURL string

	// SessionTTL controls how long saved sessions are considered valid.
	SessionTTL time.Duration

	// AuthCooldown is the soft-deactivation duration for auth errors.
	AuthCooldown time.Duration

	// BanCooldown is the soft-deactivation duration for banned/locked accounts.
	BanCooldown time.Duration

	// RateLimit configures per-account per-endpoint rate limiting.
	RateLimit ratelimit.Config

	// MetricsHook is called on each API request for external metrics collection.
	// endpoint is the operation name, success and rateLimited indicate the outcome.
	MetricsHook func(endpoint string, success, rateLimited bool)

	// SessionDir overrides the default session persistence directory.
	// Default: ~/.go-twitter/sessions
	SessionDir string

	// ProxyBackoffInitial is the initial backoff for proxy failures.
	ProxyBackoffInitial time.Duration

	// ProxyBackoffMax is the maximum backoff for proxy failures.
	ProxyBackoffMax time.Duration

	// NoJitter skips the anti-fingerprint delay before each request.
	NoJitter bool

	// Decoder configures response decoding.
	Decoder DecoderConfig
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *ClientConfig) defaults() {
	if cfg.BaseURL == "" {
		cfg.BaseURL = restBase
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.AuthCooldown == 0 {
		cfg.AuthCooldown = 1 * time.Hour
	}
	if cfg.BanCooldown == 0 {
		cfg.BanCooldown = 6 * time.Hour
	}
	if cfg.RateLimit.RequestsPerWindow == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig
	}
	if cfg.ProxyBackoffInitial == 0 {
		cfg.ProxyBackoffInitial = 30 * time.Second
	}
	if cfg.ProxyBackoffMax == 0 {
		cfg.ProxyBackoffMax = 30 * time.Minute
	}
}
