package twitter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/buger/jsonparser"
)

const guestActivateURL = restBase + "/guest/activate.json"

// guestTokenBackoff spaces out guest/activate.json retries.
var guestTokenBackoff = stealth.BackoffConfig{
	InitialWait: 2 * time.Second,
	MaxWait:     60 * time.Second,
	Multiplier:  2.0,
	JitterPct:   0.3,
}

// getGuestToken activates one guest token on the shared client.
func (c *Client) getGuestToken() (string, error) {
	body, _, status, err := c.client.DoWithHeaderOrder("POST", guestActivateURL, activateHeaders(), nil, twitterHeaderOrder)
	if err != nil {
		return "", err
	}
	if status != 200 {
		return "", fmt.Errorf("guest token: HTTP %d", status)
	}
	token, err := jsonparser.GetString(body, "guest_token")
	if err != nil {
		return "", fmt.Errorf("guest token: %w", err)
	}
	if token == "" {
		return "", fmt.Errorf("empty guest token in response")
	}
	return token, nil
}

// acquireGuestToken retries getGuestToken with exponential backoff.
func (c *Client) acquireGuestToken(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := range maxRetries {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(guestTokenBackoff.Duration(attempt)):
			}
		}
		token, err := c.getGuestToken()
		if err == nil {
			return token, nil
		}
		lastErr = err
		slog.Warn("guest token acquisition failed", slog.Int("attempt", attempt+1), slog.Any("error", err))
	}
	return "", fmt.Errorf("acquire guest token after %d attempts: %w", maxRetries, lastErr)
}
