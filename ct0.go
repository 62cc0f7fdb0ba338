package twitter

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// ct0MaxAge is how long a ct0 is used before it is rotated proactively.
const ct0MaxAge = 4 * time.Hour

// GenerateCT0 returns a random 64-char hex ct0 CSRF token.
func GenerateCT0() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return strings.Repeat("0", 64)
	}
	return hex.EncodeToString(b)
}

// extractCT0FromHeaders returns the ct0 set by a response, if any. Multiple
// cookies may be folded into the header with newlines or commas.
func extractCT0FromHeaders(headers map[string]string) string {
	raw := headers["set-cookie"]
	for _, cookie := range strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == ',' }) {
		for _, attr := range strings.Split(cookie, ";") {
			name, val, ok := strings.Cut(strings.TrimSpace(attr), "=")
			if ok && name == "ct0" && val != "" {
				return val
			}
		}
	}
	return ""
}
