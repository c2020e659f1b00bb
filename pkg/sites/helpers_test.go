package sites

import (
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func TestResolveURL(t *testing.T) {
	base := "https://www.prothomalo.com"
	cases := []struct {
		href string
		want string
	}{
		{"/bangladesh/story", "https://www.prothomalo.com/bangladesh/story"},
		{"//cdn.example.com/x.jpg", "https://cdn.example.com/x.jpg"},
		{"https://other.example/x", "https://other.example/x"},
		{"mailto:desk@example.com", ""},
		{"javascript:void(0)", ""},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := resolveURL(tc.href, base); got != tc.want {
			t.Errorf("resolveURL(%q) = %q, want %q", tc.href, got, tc.want)
		}
	}
}

func TestNewDocumentDecodesDeclaredCharset(t *testing.T) {
	// UTF-16 body with the charset declared in the Content-Type header.
	encoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	body, _, err := transform.Bytes(encoder, []byte("<html><body><h1>বাংলা খবর</h1></body></html>"))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	doc, err := newDocument(body, "text/html; charset=utf-16le")
	if err != nil {
		t.Fatalf("newDocument: %v", err)
	}
	if got := strings.TrimSpace(doc.Find("h1").Text()); got != "বাংলা খবর" {
		t.Fatalf("expected decoded Bengali heading, got %q", got)
	}
}

func TestPlausibleImageURL(t *testing.T) {
	host := "www.prothomalo.com"
	accept := []string{
		"https://images.prothomalo.com/uploads/story-photo.jpg",
		"https://cdn.example.com/media/photo.webp",
		"https://www.prothomalo.com/media/2025/picture",
	}
	reject := []string{
		"https://x.example/logo.png",
		"https://x.example/share-button.jpg",
		"https://x.example/pixel.gif",
		"https://x.example/photo_16x16.png",
		"short",
		"https://facebook.com/img/photo.jpg",
	}
	for _, u := range accept {
		if !plausibleImageURL(u, host) {
			t.Errorf("expected accept: %s", u)
		}
	}
	for _, u := range reject {
		if plausibleImageURL(u, host) {
			t.Errorf("expected reject: %s", u)
		}
	}
}

func TestHeroImagePrefersOpenGraph(t *testing.T) {
	page := `<html><head>
		<meta property="og:image" content="/uploads/og-photo.jpg"/>
	</head><body>
		<figure><img src="/uploads/inline-photo.jpg"/></figure>
	</body></html>`
	doc, err := newDocument([]byte(page), htmlContentType)
	if err != nil {
		t.Fatalf("newDocument: %v", err)
	}

	got := heroImage(doc, "https://www.prothomalo.com")
	if got != "https://www.prothomalo.com/uploads/og-photo.jpg" {
		t.Fatalf("expected og image, got %q", got)
	}
}

func TestHeroImageFallsBackToContentImages(t *testing.T) {
	page := `<html><body>
		<img src="/assets/logo.png"/>
		<figure><img data-src="/uploads/lazy-story-photo.jpg"/></figure>
	</body></html>`
	doc, err := newDocument([]byte(page), htmlContentType)
	if err != nil {
		t.Fatalf("newDocument: %v", err)
	}

	got := heroImage(doc, "https://www.prothomalo.com")
	if got != "https://www.prothomalo.com/uploads/lazy-story-photo.jpg" {
		t.Fatalf("expected lazy content image, got %q", got)
	}
}

func TestHeroImageReadsJSONLD(t *testing.T) {
	page := `<html><head>
		<script type="application/ld+json">
		{"@type":"NewsArticle","headline":"শিরোনাম","image":{"@type":"ImageObject","url":"/uploads/ld-photo.jpg"}}
		</script>
	</head><body><p>দেহ</p></body></html>`
	doc, err := newDocument([]byte(page), htmlContentType)
	if err != nil {
		t.Fatalf("newDocument: %v", err)
	}

	got := heroImage(doc, "https://www.prothomalo.com")
	if got != "https://www.prothomalo.com/uploads/ld-photo.jpg" {
		t.Fatalf("expected JSON-LD image, got %q", got)
	}
}
