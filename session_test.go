package twitter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anatolykoptev/go-stealth/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, saveSession(dir, "alice", "tok", "ct0"))

	path, err := sessionPath(dir, "alice")
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	authToken, ct0, err := loadSession(dir, "alice", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "tok", authToken)
	assert.Equal(t, "ct0", ct0)

	authToken, _, err = loadSession(dir, "bob", time.Hour)
	require.NoError(t, err)
	assert.Empty(t, authToken)
}

func TestSessionExpired(t *testing.T) {
	dir := t.TempDir()
	old := `{"auth_token":"tok","ct0":"c","saved_at":"Wed Aug 27 13:08:45 +0000 2008"}`
	path, err := sessionPath(dir, "alice")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(old), 0o600))

	authToken, _, err := loadSession(dir, "alice", time.Hour)
	require.NoError(t, err)
	assert.Empty(t, authToken)

	authToken, _, err = loadSession(dir, "alice", 0)
	require.NoError(t, err)
	assert.Equal(t, "tok", authToken)
}

func TestSessionPathRejectsEscapes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"", ".", "..", "../x", "a/b", `a\b`} {
		_, err := sessionPath(dir, name)
		assert.Error(t, err, name)
	}
	assert.Error(t, saveSession(dir, "../x", "tok", "c"))
	_, err := os.Stat(filepath.Join(filepath.Dir(dir), "x.json"))
	assert.True(t, os.IsNotExist(err))

	_, _, err = loadSession(dir, "../x", 0)
	assert.Error(t, err)
}

func TestLoadCredentials(t *testing.T) {
	c, _ := newTestClient(t, nil)

	acc := &Account{Username: "alice", AuthToken: "tok"}
	require.NoError(t, c.loadCredentials(acc))
	_, ct0, _ := acc.Credentials()
	assert.Len(t, ct0, 64)

	// The generated ct0 was persisted and wins on the next load.
	again := &Account{Username: "alice", AuthToken: "other", CT0: "x"}
	require.NoError(t, c.loadCredentials(again))
	authToken, ct02, _ := again.Credentials()
	assert.Equal(t, "tok", authToken)
	assert.Equal(t, ct0, ct02)

	assert.Error(t, c.loadCredentials(&Account{Username: "nobody"}))
}

func TestReloadSession(t *testing.T) {
	c, _ := newTestClient(t, nil)
	acc := &Account{Username: "alice", AuthToken: "old", CT0: "c"}
	acc.HealthTracker = pool.DefaultHealthTracker()

	assert.False(t, c.reloadSession(acc), "no session on disk")

	require.NoError(t, saveSession(c.cfg.SessionDir, "alice", "old", "c"))
	assert.False(t, c.reloadSession(acc), "same token")

	require.NoError(t, saveSession(c.cfg.SessionDir, "alice", "new", "c2"))
	assert.True(t, c.reloadSession(acc))
	authToken, ct0, _ := acc.Credentials()
	assert.Equal(t, "new", authToken)
	assert.Equal(t, "c2", ct0)
}
