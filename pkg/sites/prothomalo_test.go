package sites

import (
	"errors"
	"strings"
	"testing"
)

const htmlContentType = "text/html; charset=utf-8"

func prothomAloSite(t *testing.T) Site {
	t.Helper()
	for _, s := range Builtin() {
		if s.ID == SiteProthomAlo {
			return s
		}
	}
	t.Fatal("builtin prothom-alo site missing")
	return Site{}
}

func TestProthomAloListingPages(t *testing.T) {
	e := NewProthomAloExtractor(prothomAloSite(t))

	pages := e.ListingPages()
	if len(pages) != 10 {
		t.Fatalf("expected homepage + 9 sections, got %d: %v", len(pages), pages)
	}
	if pages[0] != "https://www.prothomalo.com" {
		t.Fatalf("expected homepage first, got %s", pages[0])
	}
	if pages[1] != "https://www.prothomalo.com/bangladesh" {
		t.Fatalf("unexpected first section %s", pages[1])
	}
}

func TestProthomAloDiscoverLinks(t *testing.T) {
	listing := `<html><body>
		<a href="/bangladesh/dhaka/অত্যন্ত-গুরুত্বপূর্ণ-একটি-সংবাদ-শিরোনাম">story one</a>
		<a href="https://www.prothomalo.com/world/asia/another-important-news-article-here">story two</a>
		<a href="/bangladesh">section page</a>
		<a href="/tag/politics">tag page</a>
		<a href="/static/app.js">asset</a>
		<a href="mailto:desk@prothomalo.com">mail</a>
		<a href="/bangladesh/dhaka/অত্যন্ত-গুরুত্বপূর্ণ-একটি-সংবাদ-শিরোনাম">duplicate</a>
		<a href="https://facebook.com/prothomalo">social</a>
	</body></html>`

	e := NewProthomAloExtractor(prothomAloSite(t))
	links, err := e.DiscoverLinks([]byte(listing), htmlContentType, 0)
	if err != nil {
		t.Fatalf("DiscoverLinks: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 article links, got %d: %v", len(links), links)
	}
	if !strings.HasPrefix(links[0], "https://www.prothomalo.com/bangladesh/dhaka/") {
		t.Fatalf("expected resolved absolute link first, got %s", links[0])
	}
	if links[1] != "https://www.prothomalo.com/world/asia/another-important-news-article-here" {
		t.Fatalf("unexpected second link %s", links[1])
	}
}

func TestProthomAloDiscoverLinksHonorsLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, slug := range []string{"one", "two", "three", "four"} {
		b.WriteString(`<a href="/bangladesh/dhaka/khabar-article-number-` + slug + `-long-slug">x</a>`)
	}
	b.WriteString("</body></html>")

	e := NewProthomAloExtractor(prothomAloSite(t))
	links, err := e.DiscoverLinks([]byte(b.String()), htmlContentType, 2)
	if err != nil {
		t.Fatalf("DiscoverLinks: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected limit of 2 links, got %d", len(links))
	}
}

func TestProthomAloExtractCompleteArticle(t *testing.T) {
	page := `<html><head>
		<title>শিরোনাম | প্রথম আলো</title>
		<meta property="og:image" content="https://images.prothomalo.com/uploads/2025/hero-photo.jpg"/>
		<meta property="article:published_time" content="2025-08-29T10:30:00+06:00"/>
	</head><body>
		<h1 class="headline">ঢাকায় আজ গুরুত্বপূর্ণ ঘটনা ঘটেছে</h1>
		<div class="author-name">নিজস্ব প্রতিবেদক</div>
		<div class="story-element-text">
			<script>window.tracking = true;</script>
			ঢাকায় আজ সকালে একটি গুরুত্বপূর্ণ ঘটনা ঘটেছে যা নগরবাসীর মধ্যে ব্যাপক আলোড়ন সৃষ্টি করেছে। প্রত্যক্ষদর্শীরা জানিয়েছেন ঘটনার বিস্তারিত বিবরণ।
		</div>
	</body></html>`

	e := NewProthomAloExtractor(prothomAloSite(t))
	url := "https://www.prothomalo.com/bangladesh/dhaka/some-long-article-slug-here"
	art, err := e.Extract([]byte(page), htmlContentType, url)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if art.Title != "ঢাকায় আজ গুরুত্বপূর্ণ ঘটনা ঘটেছে" {
		t.Fatalf("unexpected title %q", art.Title)
	}
	if !strings.Contains(art.Content, "গুরুত্বপূর্ণ ঘটনা") {
		t.Fatalf("content missing body text: %q", art.Content)
	}
	if strings.Contains(art.Content, "tracking") {
		t.Fatalf("script text leaked into content: %q", art.Content)
	}
	if art.Author != "নিজস্ব প্রতিবেদক" {
		t.Fatalf("unexpected author %q", art.Author)
	}
	if art.PublishedAt != "2025-08-29T10:30:00+06:00" {
		t.Fatalf("unexpected date %q", art.PublishedAt)
	}
	if art.ImageURL != "https://images.prothomalo.com/uploads/2025/hero-photo.jpg" {
		t.Fatalf("unexpected image %q", art.ImageURL)
	}
	if art.URL != url || art.SiteName != "Prothom Alo" {
		t.Fatalf("unexpected envelope fields %+v", art)
	}
	if art.ScrapedAt.IsZero() {
		t.Fatal("expected ScrapedAt to be set")
	}
}

func TestProthomAloExtractTitleFallsBackToPageTitle(t *testing.T) {
	page := `<html><head><title>শুধুই টাইটেল ট্যাগে থাকা শিরোনাম</title></head><body>
		<div class="story-content">যথেষ্ট দীর্ঘ একটি সংবাদ প্রতিবেদন যা পঞ্চাশটির বেশি অক্ষর ধারণ করে এবং বৈধ কনটেন্ট হিসেবে গণ্য হয়।</div>
	</body></html>`

	e := NewProthomAloExtractor(prothomAloSite(t))
	art, err := e.Extract([]byte(page), htmlContentType, "https://www.prothomalo.com/x/article-one-two-three-four")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if art.Title != "শুধুই টাইটেল ট্যাগে থাকা শিরোনাম" {
		t.Fatalf("unexpected title %q", art.Title)
	}
}

func TestProthomAloExtractMissingContent(t *testing.T) {
	page := `<html><body><h1>শিরোনাম আছে কিন্তু লেখা নেই</h1></body></html>`

	e := NewProthomAloExtractor(prothomAloSite(t))
	_, err := e.Extract([]byte(page), htmlContentType, "https://www.prothomalo.com/x/article-slug-long-enough")
	var eerr *ExtractionError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected *ExtractionError, got %v", err)
	}
	if eerr.Kind != ExtractionMissingField || eerr.Field != "content" {
		t.Fatalf("unexpected error %+v", eerr)
	}
}

func TestProthomAloExtractAuthorFromBylinePattern(t *testing.T) {
	page := `<html><body>
		<h1>দেশের খবর নিয়ে আজকের প্রতিবেদন</h1>
		<div class="story-content">নিজস্ব প্রতিবেদক: করিম উদ্দিন
		এই প্রতিবেদনটি যথেষ্ট দীর্ঘ এবং এতে পঞ্চাশটিরও বেশি অক্ষর রয়েছে যা কনটেন্ট যাচাই পার হওয়ার জন্য প্রয়োজন।</div>
	</body></html>`

	e := NewProthomAloExtractor(prothomAloSite(t))
	art, err := e.Extract([]byte(page), htmlContentType, "https://www.prothomalo.com/x/article-slug-long-enough")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(art.Author, "করিম উদ্দিন") {
		t.Fatalf("expected byline author, got %q", art.Author)
	}
}
