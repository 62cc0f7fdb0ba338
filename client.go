package twitter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/pool"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// httpDoer is the request surface of stealth.BrowserClient.
type httpDoer interface {
	DoWithHeaderOrder(method, url string, headers map[string]string, body io.Reader, order []string) ([]byte, map[string]string, int, error)
}

// Client fetches v1.1 REST endpoints and decodes their responses.
type Client struct {
	client httpDoer
	pool   *pool.Pool[*Account]
	dec    *Decoder
	cfg    ClientConfig

	mu                sync.Mutex
	guestToken        string
	guestLimitedUntil time.Time
}

// NewClient creates a fully-wired Twitter client.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.defaults()

	opts := []stealth.ClientOption{
		stealth.WithHeaderOrder(twitterHeaderOrder),
	}
	if cfg.DefaultProxy != "" {
		opts = append(opts, stealth.WithProxy(cfg.DefaultProxy))
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}

	c := newClient(cfg, bc)

	for _, acc := range cfg.Accounts {
		if acc.Proxy != "" {
			accClient, err := stealth.NewClient(
				stealth.WithProxy(acc.Proxy),
				stealth.WithProfile(acc.Profile.TLSProfile),
				stealth.WithHeaderOrder(twitterHeaderOrder),
			)
			if err != nil {
				slog.Warn("per-account client failed", slog.String("user", acc.Username), slog.Any("error", err))
			} else {
				acc.client = accClient
			}
		}

		if err := c.loadCredentials(acc); err != nil {
			slog.Warn("account has no usable session", slog.String("user", acc.Username), slog.Any("error", err))
			acc.SetActive(false)
		}
	}
	return c, nil
}

// newClient wires the pool and decoder around an HTTP doer. Accounts must be
// fully configured by the caller.
func newClient(cfg ClientConfig, doer httpDoer) *Client {
	for _, acc := range cfg.Accounts {
		acc.rateLimiter = ratelimit.NewLimiter(cfg.RateLimit)
		acc.HealthTracker = pool.DefaultHealthTracker()
	}

	poolCfg := pool.Config{
		AlertHook: func(topic string, payload any) {
			slog.Warn("pool alert", slog.String("topic", topic), slog.Any("payload", payload))
		},
		ProxyBackoff: pool.BackoffConfig{
			InitialWait: cfg.ProxyBackoffInitial,
			MaxWait:     cfg.ProxyBackoffMax,
			Multiplier:  2.0,
			JitterPct:   0.3,
		},
	}

	return &Client{
		client: doer,
		pool:   pool.New(cfg.Accounts, poolCfg),
		dec:    NewDecoder(cfg.Decoder),
		cfg:    cfg,
	}
}

// Fetch calls a REST operation from Endpoints with opts as its query and
// decodes the response as the operation's shape. 5xx responses that survive
// the retries short-circuit to Empty without decoding. A 4xx carrying an
// error payload yields that *ErrorRecord.
func (c *Client) Fetch(ctx context.Context, operation string, opts any) (Result, error) {
	ep, ok := Endpoints[operation]
	if !ok {
		return nil, fmt.Errorf("unknown operation: %s", operation)
	}
	u, err := ep.URL(c.cfg.BaseURL, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	body, _, status, err := c.doGET(ctx, operation, u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return c.decodeResponse(operation, status, body, ep.Shape)
}

func (c *Client) decodeResponse(operation string, status int, body []byte, shape Shape) (Result, error) {
	if status >= 500 {
		slog.Warn("server error, not decoding",
			slog.String("endpoint", operation),
			slog.Int("status", status),
			slog.String("body", truncateBytes(body, 200)))
		return Empty{}, nil
	}
	if status >= 400 {
		// The status, not the body, says this is an error response.
		if res, err := c.dec.Decode(body, ErrorShape()); err == nil {
			if rec, ok := res.(*ErrorRecord); ok {
				return rec, nil
			}
		}
	}
	res, err := c.dec.Decode(body, shape)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return res, nil
}

// Decoder returns the decoder responses go through.
func (c *Client) Decoder() *Decoder {
	return c.dec
}

// clientForAccount returns the per-account client if available, otherwise the shared client.
func (c *Client) clientForAccount(acc *Account) httpDoer {
	if acc.client != nil {
		return acc.client
	}
	return c.client
}

// doRequest executes a request with the Twitter header order.
func (c *Client) doRequest(hc httpDoer, method, urlStr string, headers map[string]string) ([]byte, map[string]string, int, error) {
	return hc.DoWithHeaderOrder(method, urlStr, headers, nil, twitterHeaderOrder)
}

// Pool returns the underlying account pool.
func (c *Client) Pool() *pool.Pool[*Account] {
	return c.pool
}

// recordAPICall calls the metrics hook if configured.
func (c *Client) recordAPICall(endpoint string, success, rateLimited bool) {
	if c.cfg.MetricsHook != nil {
		c.cfg.MetricsHook(endpoint, success, rateLimited)
	}
}

// setGuestToken stores a fresh guest token.
func (c *Client) setGuestToken(token string) {
	c.mu.Lock()
	c.guestToken = token
	c.guestLimitedUntil = time.Time{}
	c.mu.Unlock()
}

// markGuestTokenRateLimited marks the guest token as rate-limited.
func (c *Client) markGuestTokenRateLimited(until time.Time) {
	c.mu.Lock()
	c.guestLimitedUntil = until
	c.mu.Unlock()
}

// getGuestTokenCached returns the current guest token and whether it is usable.
func (c *Client) getGuestTokenCached() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.guestToken == "" || time.Now().Before(c.guestLimitedUntil) {
		return "", false
	}
	return c.guestToken, true
}
