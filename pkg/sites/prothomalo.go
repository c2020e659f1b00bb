package sites

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Adda-Baaj/bangla-khobor/internal/domain"
)

// prothomAloExtractor parses www.prothomalo.com pages. The site serves
// UTF-8 Bengali throughout and marks stories with structured microdata,
// so extraction is mostly selector chains with text-pattern fallbacks.
type prothomAloExtractor struct {
	site Site
}

// NewProthomAloExtractor returns the extractor for Prothom Alo.
func NewProthomAloExtractor(site Site) Extractor {
	return &prothomAloExtractor{site: site}
}

func (p *prothomAloExtractor) ID() string      { return p.site.ID }
func (p *prothomAloExtractor) Name() string    { return p.site.Name }
func (p *prothomAloExtractor) BaseURL() string { return p.site.BaseURL }

// ListingPages is the homepage followed by the configured section pages.
func (p *prothomAloExtractor) ListingPages() []string {
	pages := []string{p.site.BaseURL}
	for _, section := range p.site.Sections {
		if !strings.HasPrefix(section, "/") {
			continue
		}
		pages = append(pages, p.site.BaseURL+section)
	}
	return pages
}

// URL substrings that mark navigation, assets and external links rather
// than articles.
var prothomAloExcludedPatterns = []string{
	"/tag/", "/author/", "/category/", "/search",
	"javascript:", "mailto:", "#", "/static/",
	"/assets/", ".jpg", ".png", ".gif", ".pdf",
	"/page/", "/archive/", "/contact", "/about",
	"facebook.com", "twitter.com", "youtube.com",
	"/api/", "/oauth/", "/auth/", "/login",
	"/collection/", "/latest",
}

// Section landing pages and the homepage itself are never articles.
var prothomAloSectionSuffixes = []string{
	"prothomalo.com/bangladesh",
	"prothomalo.com/world",
	"prothomalo.com/sports",
	"prothomalo.com/entertainment",
	"prothomalo.com/business",
	"prothomalo.com/politics",
	"prothomalo.com/opinion",
	"prothomalo.com/lifestyle",
	"prothomalo.com/tech",
	"prothomalo.com/",
	"prothomalo.com",
}

var (
	datePathPattern  = regexp.MustCompile(`/\d{4}/\d{2}/\d{2}/`)
	numericIDPattern = regexp.MustCompile(`/\d+/`)
	longSlugPattern  = regexp.MustCompile(`/[a-zA-Z0-9\-]{20,}/?$`)
)

// isArticleLink filters candidate hrefs down to story pages. Category
// pages, navigation and asset links are rejected first; what remains
// must look like an article path (deep path, date, numeric id or a long
// slug).
func (p *prothomAloExtractor) isArticleLink(url string) bool {
	lower := strings.ToLower(url)
	for _, pattern := range prothomAloExcludedPatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}
	for _, suffix := range prothomAloSectionSuffixes {
		if strings.HasSuffix(url, suffix) {
			return false
		}
	}

	if len(strings.Split(url, "/")) >= 5 {
		return true
	}
	if datePathPattern.MatchString(url) {
		return true
	}
	if numericIDPattern.MatchString(url) {
		return true
	}
	return longSlugPattern.MatchString(url)
}

func (p *prothomAloExtractor) DiscoverLinks(listingHTML []byte, contentType string, limit int) ([]string, error) {
	doc, err := newDocument(listingHTML, contentType)
	if err != nil {
		return nil, malformedHTML(p.site.BaseURL, err)
	}
	return collectLinks(doc, p.site.BaseURL, limit, p.isArticleLink), nil
}

func (p *prothomAloExtractor) Extract(articleHTML []byte, contentType, pageURL string) (domain.Article, error) {
	doc, err := newDocument(articleHTML, contentType)
	if err != nil {
		return domain.Article{}, malformedHTML(pageURL, err)
	}

	title := p.extractTitle(doc)
	if title == "" {
		return domain.Article{}, missingField(pageURL, "title")
	}
	content := p.extractContent(doc)
	if content == "" {
		return domain.Article{}, missingField(pageURL, "content")
	}

	article := domain.Article{
		Title:       title,
		Content:     content,
		Author:      p.extractAuthor(doc),
		PublishedAt: p.extractDate(doc),
		URL:         pageURL,
		ImageURL:    heroImage(doc, p.site.BaseURL),
		SiteName:    p.site.Name,
		ScrapedAt:   time.Now(),
	}
	return article.Sanitize(), nil
}

func (p *prothomAloExtractor) extractTitle(doc *goquery.Document) string {
	return firstNonEmpty(
		selectorText(doc,
			"h1.headline",
			`h1[itemprop="headline"]`,
			"h1.entry-title",
			"h1",
			".headline h1",
			".story-element-text h1",
		),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
}

var prothomAloContentSelectors = []string{
	".story-element-text",
	".story-content",
	".entry-content",
	`[itemprop="articleBody"]`,
	".article-body",
	".content-body",
}

func (p *prothomAloExtractor) extractContent(doc *goquery.Document) string {
	for _, sel := range prothomAloContentSelectors {
		nodes := doc.Find(sel)
		if nodes.Length() == 0 {
			continue
		}
		var parts []string
		nodes.Each(func(_ int, node *goquery.Selection) {
			node.Find("script, style").Remove()
			text := strings.TrimSpace(node.Text())
			if len([]rune(text)) > 50 {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			return strings.Join(parts, "\n\n")
		}
	}

	// Last resort: gather every substantial paragraph on the page.
	return paragraphText(doc.Find("p"), 21, nil)
}

var bylinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`প্রতিবেদক[:\s]*([^\n,]+)`),
	regexp.MustCompile(`সংবাদদাতা[:\s]*([^\n,]+)`),
	regexp.MustCompile(`স্টাফ রিপোর্টার[:\s]*([^\n,]+)`),
}

func (p *prothomAloExtractor) extractAuthor(doc *goquery.Document) string {
	if author := selectorText(doc,
		`[itemprop="author"]`,
		".author-name",
		".byline",
		".reporter-name",
		".writer-name",
	); author != "" {
		return author
	}

	pageText := doc.Text()
	for _, pattern := range bylinePatterns {
		if m := pattern.FindStringSubmatch(pageText); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func (p *prothomAloExtractor) extractDate(doc *goquery.Document) string {
	dateSelectors := []string{
		`[itemprop="datePublished"]`,
		".publish-date",
		".date",
		".timestamp",
		"time",
	}
	for _, sel := range dateSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if attr := firstNonEmpty(node.AttrOr("datetime", ""), node.AttrOr("content", "")); attr != "" {
			return attr
		}
		if text := strings.TrimSpace(node.Text()); text != "" {
			return text
		}
	}

	return metaContent(doc,
		`meta[property="article:published_time"]`,
		`meta[name="publishdate"]`,
		`meta[name="date"]`,
	)
}
