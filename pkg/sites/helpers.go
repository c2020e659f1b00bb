package sites

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// newDocument decodes the body using its declared charset (Content-Type
// header or meta tag) and parses it. Decoding before parsing is what keeps
// Bengali text free of mojibake when a site serves a legacy encoding.
func newDocument(body []byte, contentType string) (*goquery.Document, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// resolveURL makes href absolute against base. Empty or unresolvable
// hrefs yield "".
func resolveURL(href, base string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := baseURL.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// metaContent returns the content attribute of the first matching meta selector.
func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				if trimmed := strings.TrimSpace(val); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

// selectorText returns the trimmed text of the first matching selector.
func selectorText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if text := strings.TrimSpace(node.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

// imgSrc pulls the effective source of an img node, lazy-load attributes included.
func imgSrc(node *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src", "data-lazy-src", "data-original", "data-url"} {
		if val, ok := node.Attr(attr); ok {
			if trimmed := strings.TrimSpace(val); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// Image URLs matching these substrings are never article hero images.
var excludedImagePatterns = []string{
	"logo", "icon-", "avatar", "profile-", "share-", "social-",
	"banner-", "ad-", "advertisement", "promo-", "widget-",
	"placeholder", "default-", "blank", "1x1", "pixel",
	"facebook", "twitter", "youtube", "instagram",
}

var imageURLHints = []string{
	".jpg", ".jpeg", ".png", ".webp", ".gif", ".svg",
	"img.", "images.", "photos.", "cdn.", "static.", "assets.",
	"media.", "uploads.", "files.",
}

// plausibleImageURL filters out navigation chrome, social widgets and
// tracking pixels while accepting anything that looks like site media.
func plausibleImageURL(raw, siteHost string) bool {
	if len(raw) < 10 {
		return false
	}
	lower := strings.ToLower(raw)

	hinted := false
	for _, hint := range imageURLHints {
		if strings.Contains(lower, hint) {
			hinted = true
			break
		}
	}
	if !hinted && siteHost != "" && strings.Contains(lower, strings.ToLower(siteHost)) {
		hinted = true
	}
	if !hinted {
		return false
	}

	for _, pattern := range excludedImagePatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}
	for _, size := range []string{"_16x", "_24x", "_32x", "_50x", "_thumb"} {
		if strings.Contains(lower, size) {
			return false
		}
	}
	return true
}

// heroImage finds the article's main image: og/twitter meta first, then
// JSON-LD structured data, then the first plausible image inside content
// containers, then any plausible image on the page.
func heroImage(doc *goquery.Document, baseURL string) string {
	meta := metaContent(doc,
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[property="twitter:image"]`,
		`meta[name="image"]`,
	)
	siteHost := hostOf(baseURL)
	if meta != "" {
		if resolved := resolveURL(meta, baseURL); resolved != "" && plausibleImageURL(resolved, siteHost) {
			return resolved
		}
	}

	if src := jsonLDImage(doc, baseURL, siteHost); src != "" {
		return src
	}

	contentSelectors := []string{
		"figure img",
		"picture img",
		".story-element img",
		".story-content img",
		".article-content img",
		"article img",
		"main img",
	}
	for _, sel := range contentSelectors {
		found := ""
		doc.Find(sel).EachWithBreak(func(_ int, node *goquery.Selection) bool {
			if src := resolveURL(imgSrc(node), baseURL); src != "" && plausibleImageURL(src, siteHost) {
				found = src
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}

	found := ""
	doc.Find("img").EachWithBreak(func(_ int, node *goquery.Selection) bool {
		if src := resolveURL(imgSrc(node), baseURL); src != "" && plausibleImageURL(src, siteHost) {
			found = src
			return false
		}
		return true
	})
	return found
}

// jsonLDImage pulls an image URL out of ld+json blocks. Malformed blocks
// are skipped.
func jsonLDImage(doc *goquery.Document, baseURL, siteHost string) string {
	found := ""
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(node.Text()), &data); err != nil {
			return true
		}
		raw := ldImage(data)
		if raw == "" {
			return true
		}
		if resolved := resolveURL(raw, baseURL); resolved != "" && plausibleImageURL(resolved, siteHost) {
			found = resolved
			return false
		}
		return true
	})
	return found
}

// ldImage walks a decoded JSON-LD value looking for image or thumbnailUrl.
func ldImage(v any) string {
	switch val := v.(type) {
	case map[string]any:
		for _, key := range []string{"image", "thumbnailUrl"} {
			if s := ldImageValue(val[key]); s != "" {
				return s
			}
		}
	case []any:
		for _, item := range val {
			if s := ldImage(item); s != "" {
				return s
			}
		}
	}
	return ""
}

func ldImageValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []any:
		for _, item := range val {
			if s := ldImageValue(item); s != "" {
				return s
			}
		}
	case map[string]any:
		return ldImageValue(val["url"])
	}
	return ""
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// collectLinks walks every anchor in document order, resolves it against
// base, and keeps the ones accept() approves, deduplicated. limit == 0
// means no cap.
func collectLinks(doc *goquery.Document, base string, limit int, accept func(string) bool) []string {
	var links []string
	seen := make(map[string]bool)

	doc.Find("a[href]").EachWithBreak(func(_ int, node *goquery.Selection) bool {
		href, _ := node.Attr("href")
		full := resolveURL(href, base)
		if full == "" || seen[full] || !accept(full) {
			return true
		}
		seen[full] = true
		links = append(links, full)
		return limit == 0 || len(links) < limit
	})

	return links
}

// paragraphText joins the text of every matched element, skipping entries
// shorter than minRunes or matching the skip list.
func paragraphText(sel *goquery.Selection, minRunes int, skip func(string) bool) string {
	var parts []string
	sel.Each(func(_ int, node *goquery.Selection) {
		text := strings.TrimSpace(node.Text())
		if len([]rune(text)) < minRunes {
			return
		}
		if skip != nil && skip(text) {
			return
		}
		parts = append(parts, text)
	})
	return strings.Join(parts, "\n\n")
}
