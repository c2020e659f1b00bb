package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Rules are the thresholds a scraped article must clear to be usable.
type Rules struct {
	MinTitleLength   int
	MinContentLength int
}

// DefaultRules matches the thresholds the supported sites publish at.
func DefaultRules() Rules {
	return Rules{MinTitleLength: 5, MinContentLength: 50}
}

// Validate checks an article against the rules and returns every violated
// rule. It never short-circuits: a rejected article reports all reasons at
// once so malformed site responses are easy to diagnose. An empty slice
// means the article is valid.
func Validate(a Article, rules Rules) []string {
	if rules.MinTitleLength <= 0 {
		rules.MinTitleLength = DefaultRules().MinTitleLength
	}
	if rules.MinContentLength <= 0 {
		rules.MinContentLength = DefaultRules().MinContentLength
	}

	var reasons []string

	trimmedURL := strings.TrimSpace(a.URL)
	if trimmedURL == "" {
		reasons = append(reasons, "url is empty")
	} else if !wellFormedURL(trimmedURL) {
		reasons = append(reasons, fmt.Sprintf("url %q is not well-formed", trimmedURL))
	}

	// Length thresholds count runes so Bengali text is not penalized for
	// its multi-byte encoding.
	if n := len([]rune(strings.TrimSpace(a.Title))); n < rules.MinTitleLength {
		reasons = append(reasons, fmt.Sprintf("title too short (%d < %d)", n, rules.MinTitleLength))
	}
	if n := len([]rune(strings.TrimSpace(a.Content))); n < rules.MinContentLength {
		reasons = append(reasons, fmt.Sprintf("content too short (%d < %d)", n, rules.MinContentLength))
	}
	if a.ScrapedAt.IsZero() {
		reasons = append(reasons, "scraped_at is not set")
	}

	return reasons
}

// Valid reports whether the article passes all rules.
func Valid(a Article, rules Rules) bool {
	return len(Validate(a, rules)) == 0
}

func wellFormedURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
