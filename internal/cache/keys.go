package cache

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic key derivation
	"encoding/hex"
	"net/url"
	"strings"
)

// Tracking query parameters that never change which article a URL points
// at. Stripping them makes trivially different URLs collide on one key.
var trackingParams = map[string]bool{
	"fbclid":       true,
	"gclid":        true,
	"ref":          true,
	"utm_campaign": true,
	"utm_content":  true,
	"utm_medium":   true,
	"utm_source":   true,
	"utm_term":     true,
}

// NormalizeURL canonicalizes an article URL before keying: lowercased
// scheme/host, default ports and fragments dropped, tracking parameters
// removed, trailing slash trimmed. Unparseable input is returned trimmed
// so it still yields a stable (if unshared) key.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	switch {
	case u.Scheme == "http" && strings.HasSuffix(u.Host, ":80"):
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(u.Host, ":443"):
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	q := u.Query()
	for param := range q {
		if trackingParams[strings.ToLower(param)] {
			q.Del(param)
		}
	}
	u.RawQuery = q.Encode()

	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String()
}

// Key derives the stable cache key for a URL.
func Key(rawURL string) string {
	sum := sha1.Sum([]byte(NormalizeURL(rawURL)))
	return hex.EncodeToString(sum[:])
}
