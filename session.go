package twitter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// sessionDir returns the directory cookie sessions are persisted under.
func sessionDir(override string) string {
	if override != "" {
		return override
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".go-twitter-decode", "sessions")
}

// sessionPath rejects usernames that would resolve outside dir.
func sessionPath(dir, username string) (string, error) {
	if username == "" || username == "." || username == ".." ||
		strings.ContainsAny(username, `/\`) || filepath.Base(username) != username {
		return "", fmt.Errorf("invalid session username %q", username)
	}
	return filepath.Join(dir, username+".json"), nil
}

// savedSession is the on-disk form of an account's cookies.
type savedSession struct {
	AuthToken string    `json:"auth_token"`
	CT0       string    `json:"ct0"`
	SavedAt   time.Time `json:"saved_at"`
}

// saveSession writes the cookies of username under dir.
func saveSession(dir, username, authToken, ct0 string) error {
	d := sessionDir(dir)
	if err := os.MkdirAll(d, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := jsonTwitter.MarshalIndent(savedSession{
		AuthToken: authToken,
		CT0:       ct0,
		SavedAt:   time.Now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	path, err := sessionPath(d, username)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session %s: %w", path, err)
	}
	return nil
}

// loadSession reads the cookies of username. A missing or expired session
// yields empty strings and no error.
func loadSession(dir, username string, ttl time.Duration) (authToken, ct0 string, err error) {
	path, err := sessionPath(sessionDir(dir), username)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}
	var s savedSession
	if err := jsonTwitter.Unmarshal(data, &s); err != nil {
		return "", "", fmt.Errorf("decode session %s: %w", username, err)
	}
	if ttl > 0 && time.Since(s.SavedAt) > ttl {
		slog.Debug("session expired", slog.String("user", username))
		return "", "", nil
	}
	return s.AuthToken, s.CT0, nil
}

// loadCredentials prefers a persisted session over the cookies the account
// was configured with. Configured cookies are persisted on first use.
func (c *Client) loadCredentials(acc *Account) error {
	authToken, ct0, err := loadSession(c.cfg.SessionDir, acc.Username, c.cfg.SessionTTL)
	if err != nil {
		slog.Warn("error loading session", slog.String("user", acc.Username), slog.Any("error", err))
	}
	if authToken != "" && ct0 != "" {
		acc.SetCredentials(authToken, ct0)
		slog.Info("loaded session from disk", slog.String("user", acc.Username))
		return nil
	}

	authToken, ct0, _ = acc.Credentials()
	if authToken == "" {
		return fmt.Errorf("no session and no auth_token for account %s", acc.Username)
	}
	if ct0 == "" {
		acc.RotateCT0()
	} else {
		acc.SetCredentials(authToken, ct0)
	}
	c.persist(acc)
	return nil
}

// persist saves the account's current cookies, logging failures.
func (c *Client) persist(acc *Account) {
	authToken, ct0, _ := acc.Credentials()
	if err := saveSession(c.cfg.SessionDir, acc.Username, authToken, ct0); err != nil {
		slog.Warn("session save failed", slog.String("user", acc.Username), slog.Any("error", err))
		return
	}
	slog.Debug("session saved", slog.String("user", acc.Username))
}

// reloadSession picks up cookies refreshed on disk by another process. It
// reports whether the account now holds a different auth_token.
func (c *Client) reloadSession(acc *Account) bool {
	authToken, ct0, err := loadSession(c.cfg.SessionDir, acc.Username, 0)
	if err != nil || authToken == "" || ct0 == "" {
		return false
	}
	current, _, _ := acc.Credentials()
	if authToken == current {
		return false
	}
	acc.SetCredentials(authToken, ct0)
	acc.Reset()
	slog.Info("session reloaded from disk", slog.String("user", acc.Username))
	return true
}
