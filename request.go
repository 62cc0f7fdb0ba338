package twitter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

const maxRetries = 3

// doGET executes a GET request with multi-account retry, ct0 rotation and
// guest-token fallback. It returns the last response for any status below 500
// so error payloads reach the decoder as data. 5xx responses are retried and,
// if they persist, returned with a nil error for the caller to short-circuit.
func (c *Client) doGET(ctx context.Context, endpoint, url string) ([]byte, map[string]string, int, error) {
	if err := c.jitter(ctx); err != nil {
		return nil, nil, 0, err
	}

	var lastErr error
	var serverBody []byte
	var serverHdrs map[string]string
	serverStatus := 0

	for attempt := range maxRetries {
		if attempt > 0 {
			delay := stealth.DefaultBackoff.Duration(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, nil, 0, ctx.Err()
			}
		}

		filter := func(a *Account) bool {
			return a.AllowRequest(endpoint) && time.Now().After(a.ProxyBackoffUntil())
		}

		var acc *Account
		var accErr error
		if requiresAuth(endpoint) {
			acc, accErr = c.pool.NextWithWait(ctx, filter, 5*time.Minute)
		} else {
			acc, accErr = c.pool.Next(filter)
		}
		if accErr != nil {
			lastErr = accErr
			break
		}

		// Proactive ct0 rotation
		if acc.CT0Age() > ct0MaxAge {
			acc.RotateCT0()
			c.persist(acc)
			slog.Info("ct0 rotated (proactive)", slog.String("user", acc.Username))
		}

		hc := c.clientForAccount(acc)
		authTok, ct0, ua := acc.Credentials()
		body, respHdrs, status, err := c.doRequest(hc, "GET", url, twitterHeaders(authTok, ct0, ua))
		if err != nil {
			if acc.Proxy != "" && isProxyError(err) {
				c.markProxyDown(acc)
			} else {
				acc.RecordFailure()
			}
			lastErr = err
			continue
		}
		acc.resetProxyFailures()

		switch {
		case status == 429:
			c.recordAPICall(endpoint, false, true)
			acc.MarkEndpointRateLimited(endpoint, parseRateLimitReset(respHdrs["x-rate-limit-reset"]))
			lastErr = fmt.Errorf("429 rate limited")
			continue

		case status >= 500:
			c.recordAPICall(endpoint, false, false)
			acc.RecordFailure()
			slog.Warn("doGET server error", slog.String("endpoint", endpoint), slog.Int("status", status))
			serverBody, serverHdrs, serverStatus = body, respHdrs, status
			lastErr = nil
			continue
		}

		switch errClass := classifyError(body); errClass {
		case errNone:
			if newCT0 := extractCT0FromHeaders(respHdrs); newCT0 != "" && newCT0 != ct0 {
				acc.SetCT0(newCT0)
				c.persist(acc)
			}
			c.recordAPICall(endpoint, status < 400, false)
			acc.RecordSuccess()
			return body, respHdrs, status, nil

		case errCSRF:
			slog.Warn("CSRF error 353, rotating ct0", slog.String("user", acc.Username))
			acc.RotateCT0()
			c.persist(acc)
			authTok2, ct02, ua2 := acc.Credentials()
			body2, respHdrs2, status2, err2 := c.doRequest(hc, "GET", url, twitterHeaders(authTok2, ct02, ua2))
			if err2 == nil && status2 < 500 && classifyError(body2) == errNone {
				if newCT0 := extractCT0FromHeaders(respHdrs2); newCT0 != "" {
					acc.SetCT0(newCT0)
					c.persist(acc)
				}
				c.recordAPICall(endpoint, true, false)
				acc.RecordSuccess()
				return body2, respHdrs2, status2, nil
			}
			acc.RecordFailure()
			lastErr = fmt.Errorf("CSRF retry failed")
			continue

		case errAuthExpired:
			c.recordAPICall(endpoint, false, false)
			if c.reloadSession(acc) {
				lastErr = fmt.Errorf("auth expired for %s, session reloaded", acc.Username)
				continue
			}
			slog.Warn("auth expired, soft-deactivating", slog.String("user", acc.Username))
			c.pool.SoftDeactivate(acc, c.cfg.AuthCooldown)
			lastErr = fmt.Errorf("auth expired for %s", acc.Username)
			continue

		case errInternal:
			slog.Warn("error 131, retrying", slog.String("user", acc.Username), slog.String("endpoint", endpoint))
			lastErr = fmt.Errorf("Twitter internal error (131)")
			continue

		case errBanned, errLocked:
			c.recordAPICall(endpoint, false, false)
			slog.Warn("account banned or locked", slog.String("user", acc.Username), slog.Int("class", int(errClass)))
			c.pool.SoftDeactivate(acc, c.cfg.BanCooldown)
			lastErr = fmt.Errorf("account %s unavailable", acc.Username)
			continue

		case errSuspended:
			c.recordAPICall(endpoint, false, false)
			slog.Warn("account suspended (code 64), permanently deactivating", slog.String("user", acc.Username))
			c.pool.DeactivateItem(acc)
			lastErr = fmt.Errorf("account suspended")
			continue

		case errBlocked, errNotAuthorized:
			c.recordAPICall(endpoint, false, false)
			slog.Debug("request not authorized", slog.String("user", acc.Username), slog.String("endpoint", endpoint))
			acc.RecordSuccess()
			return body, respHdrs, status, nil

		default:
			// An error payload about the request, not the account.
			c.recordAPICall(endpoint, false, false)
			if shouldDeactivate := acc.RecordFailure(); shouldDeactivate {
				total, failed, consec := acc.Stats()
				slog.Warn("account unhealthy, deactivating",
					slog.String("user", acc.Username),
					slog.Int("total", total),
					slog.Int("failed", failed),
					slog.Int("consec", consec))
				c.pool.DeactivateItem(acc)
			}
			return body, respHdrs, status, nil
		}
	}

	if serverStatus != 0 && lastErr == nil {
		return serverBody, serverHdrs, serverStatus, nil
	}

	// --- Guest token fallback ---
	if requiresAuth(endpoint) {
		if lastErr != nil {
			return nil, nil, 0, fmt.Errorf("pool exhausted for %s (requires auth): %w", endpoint, lastErr)
		}
		return nil, nil, 0, fmt.Errorf("%s requires authenticated account", endpoint)
	}
	return c.guestGET(ctx, endpoint, url, lastErr)
}

// guestGET runs one request on a guest token, reacquiring it once if rejected.
func (c *Client) guestGET(ctx context.Context, endpoint, url string, poolErr error) ([]byte, map[string]string, int, error) {
	gt, ok := c.getGuestTokenCached()
	if !ok {
		token, err := c.acquireGuestToken(ctx)
		if err != nil {
			if poolErr != nil {
				return nil, nil, 0, fmt.Errorf("pool exhausted for %s: %w", endpoint, poolErr)
			}
			return nil, nil, 0, fmt.Errorf("guest token unavailable for %s: %w", endpoint, err)
		}
		c.setGuestToken(token)
		gt = token
		slog.Info("guest token acquired as fallback", slog.String("endpoint", endpoint))
	}

	body, respHdrs, status, err := c.doRequest(c.client, "GET", url, guestHeaders(gt))
	if err != nil {
		return nil, nil, 0, err
	}
	if status == 429 {
		c.recordAPICall(endpoint, false, true)
		c.markGuestTokenRateLimited(parseRateLimitReset(respHdrs["x-rate-limit-reset"]))
		return nil, nil, 0, fmt.Errorf("guest token rate-limited for %s", endpoint)
	}
	if status == 401 || status == 403 {
		slog.Warn("guest token expired, reacquiring", slog.String("endpoint", endpoint), slog.Int("status", status))
		c.setGuestToken("")
		newGT, gtErr := c.acquireGuestToken(ctx)
		if gtErr != nil {
			c.recordAPICall(endpoint, false, false)
			return nil, nil, 0, fmt.Errorf("guest token reacquisition failed for %s: %w", endpoint, gtErr)
		}
		c.setGuestToken(newGT)
		body, respHdrs, status, err = c.doRequest(c.client, "GET", url, guestHeaders(newGT))
		if err != nil {
			return nil, nil, 0, err
		}
	}
	c.recordAPICall(endpoint, status < 400, false)
	return body, respHdrs, status, nil
}

// jitter sleeps the anti-fingerprint delay unless disabled.
func (c *Client) jitter(ctx context.Context) error {
	if c.cfg.NoJitter {
		return ctx.Err()
	}
	return stealth.DefaultJitter.Sleep(ctx)
}

// requiresAuth reports whether the operation needs a real authenticated account.
func requiresAuth(endpoint string) bool {
	return Endpoints[endpoint].Auth
}

// isProxyError returns true if the error looks like a proxy connectivity failure.
func isProxyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "proxy") ||
		strings.Contains(msg, "SOCKS") ||
		strings.Contains(msg, "tunnel") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host")
}

// markProxyDown applies exponential backoff for proxy failures.
func (c *Client) markProxyDown(acc *Account) {
	fails := acc.incProxyFailures()

	duration := stealth.BackoffConfig{
		InitialWait: c.cfg.ProxyBackoffInitial,
		MaxWait:     c.cfg.ProxyBackoffMax,
		Multiplier:  2.0,
		JitterPct:   0.3,
	}.Duration(fails - 1)

	acc.setProxyBackoff(time.Now().Add(duration))

	slog.Warn("proxy down, backing off",
		slog.String("user", acc.Username),
		slog.String("proxy", stealth.MaskProxy(acc.Proxy)),
		slog.Int("consec_fails", fails),
		slog.Duration("backoff", duration))
}
