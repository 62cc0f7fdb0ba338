package twitter

import stealth "github.com/anatolykoptev/go-stealth"

// defaultUserAgent is the fallback User-Agent when no per-account UA is set.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// baseHeaders are sent on every REST call.
func baseHeaders(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return map[string]string{
		"authorization":             "Bearer " + BearerToken,
		"x-twitter-active-user":     "yes",
		"x-twitter-client-language": "en",
		"user-agent":                userAgent,
		"accept":                    "application/json, */*",
		"accept-language":           "en-US,en;q=0.9",
		"accept-encoding":           "gzip, deflate, br",
		"referer":                   "https://twitter.com/",
		"origin":                    "https://twitter.com",
	}
}

// twitterHeaders returns the headers of a cookie-authenticated request.
func twitterHeaders(authToken, ct0, userAgent string) map[string]string {
	h := baseHeaders(userAgent)
	h["x-csrf-token"] = ct0
	h["x-twitter-auth-type"] = "OAuth2Session"
	h["cookie"] = "auth_token=" + authToken + "; ct0=" + ct0
	h["sec-fetch-dest"] = "empty"
	h["sec-fetch-mode"] = "cors"
	h["sec-fetch-site"] = "same-site"
	for k, v := range stealth.ClientHintsHeaders(h["user-agent"]) {
		h[k] = v
	}
	return h
}

// guestHeaders returns headers for unauthenticated (guest token) requests.
func guestHeaders(guestToken string) map[string]string {
	h := baseHeaders("")
	h["x-guest-token"] = guestToken
	return h
}

// activateHeaders returns the headers of a guest/activate.json call.
func activateHeaders() map[string]string {
	h := baseHeaders("")
	h["content-type"] = "application/x-www-form-urlencoded"
	return h
}

// twitterHeaderOrder is the Twitter-specific header order for TLS fingerprint consistency.
var twitterHeaderOrder = []string{
	"authorization",
	"content-type",
	"x-csrf-token",
	"x-guest-token",
	"x-twitter-auth-type",
	"x-twitter-active-user",
	"x-twitter-client-language",
	"sec-ch-ua",
	"sec-ch-ua-mobile",
	"sec-ch-ua-platform",
	"sec-fetch-dest",
	"sec-fetch-mode",
	"sec-fetch-site",
	"cookie",
	"user-agent",
	"accept",
	"accept-language",
	"accept-encoding",
	"referer",
	"origin",
}
