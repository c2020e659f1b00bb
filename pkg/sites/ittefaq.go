package sites

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Adda-Baaj/bangla-khobor/internal/domain"
)

// ittefaqExtractor parses www.ittefaq.com.bd pages. Article URLs carry a
// numeric id as the first path segment and bylines embed dates in Bengali
// numerals, so this extractor converts them to RFC 3339 at +06:00.
type ittefaqExtractor struct {
	site Site
}

// NewIttefaqExtractor returns the extractor for The Daily Ittefaq.
func NewIttefaqExtractor(site Site) Extractor {
	return &ittefaqExtractor{site: site}
}

func (it *ittefaqExtractor) ID() string      { return it.site.ID }
func (it *ittefaqExtractor) Name() string    { return it.site.Name }
func (it *ittefaqExtractor) BaseURL() string { return it.site.BaseURL }

// ListingPages returns the homepage plus any configured sections; the
// Ittefaq homepage alone surfaces enough numeric-id article links.
func (it *ittefaqExtractor) ListingPages() []string {
	pages := []string{it.site.BaseURL}
	for _, section := range it.site.Sections {
		if !strings.HasPrefix(section, "/") {
			continue
		}
		pages = append(pages, it.site.BaseURL+section)
	}
	return pages
}

var ittefaqArticlePattern = regexp.MustCompile(`^https?://www\.ittefaq\.com\.bd/\d+/`)

func (it *ittefaqExtractor) DiscoverLinks(listingHTML []byte, contentType string, limit int) ([]string, error) {
	doc, err := newDocument(listingHTML, contentType)
	if err != nil {
		return nil, malformedHTML(it.site.BaseURL, err)
	}
	return collectLinks(doc, it.site.BaseURL, limit, func(url string) bool {
		return ittefaqArticlePattern.MatchString(url)
	}), nil
}

func (it *ittefaqExtractor) Extract(articleHTML []byte, contentType, pageURL string) (domain.Article, error) {
	doc, err := newDocument(articleHTML, contentType)
	if err != nil {
		return domain.Article{}, malformedHTML(pageURL, err)
	}

	title := it.extractTitle(doc)
	if title == "" {
		return domain.Article{}, missingField(pageURL, "title")
	}
	content := it.extractContent(doc)
	if content == "" {
		return domain.Article{}, missingField(pageURL, "content")
	}

	author := it.extractAuthor(doc)
	if author == "" {
		author = "ইত্তেফাক ডিজিটাল ডেস্ক"
	}

	article := domain.Article{
		Title:       title,
		Content:     content,
		Author:      author,
		PublishedAt: it.extractDate(doc),
		URL:         pageURL,
		ImageURL:    heroImage(doc, it.site.BaseURL),
		SiteName:    it.site.Name,
		ScrapedAt:   time.Now(),
	}
	return article.Sanitize(), nil
}

func (it *ittefaqExtractor) extractTitle(doc *goquery.Document) string {
	for _, sel := range []string{"h1", ".article-title", "title"} {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		title := strings.TrimSpace(node.Text())
		title = strings.ReplaceAll(title, " - The Daily Ittefaq", "")
		if len([]rune(title)) > 10 {
			return strings.TrimSpace(title)
		}
	}
	return ""
}

// Boilerplate fragments (footer, share widgets, masthead) that appear in
// paragraph tags across every Ittefaq page.
var ittefaqSkipFragments = []string{
	"share", "facebook", "twitter", "ফেসবুক", "টুইটার",
	"copyright", "সর্বস্বত্ব সংরক্ষিত", "প্রকাশক", "সম্পাদক",
	"মুদ্রিত", "কাওরান বাজার", "ঢাকা-১২১৫",
}

func ittefaqBoilerplate(text string) bool {
	lower := strings.ToLower(text)
	for _, fragment := range ittefaqSkipFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}

func (it *ittefaqExtractor) extractContent(doc *goquery.Document) string {
	content := paragraphText(doc.Find("p"), 21, ittefaqBoilerplate)
	if len([]rune(content)) > 100 {
		return content
	}
	return ""
}

var ittefaqBylinePattern = regexp.MustCompile(`(ইত্তেফাক ডিজিটাল ডেস্ক|ইত্তেফাক[^।\n]*?) প্রকাশ\s*:`)

func (it *ittefaqExtractor) extractAuthor(doc *goquery.Document) string {
	for _, sel := range []string{".author", ".byline", `[class*="author"]`} {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		author := strings.TrimSpace(node.Text())
		if author != "" && len([]rune(author)) < 100 {
			return author
		}
	}

	if m := ittefaqBylinePattern.FindStringSubmatch(doc.Text()); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

var ittefaqDatePattern = regexp.MustCompile(`প্রকাশ\s*:\s*([\d\s০-৯]*\s*(?:জানুয়ারি|ফেব্রুয়ারি|মার্চ|এপ্রিল|মে|জুন|জুলাই|আগস্ট|সেপ্টেম্বর|অক্টোবর|নভেম্বর|ডিসেম্বর)\s*[\d০-৯]+(?:,\s*[\d০-৯:]+)?)`)

func (it *ittefaqExtractor) extractDate(doc *goquery.Document) string {
	if published := metaContent(doc,
		`meta[property="article:published_time"]`,
		`meta[name="publish-date"]`,
	); published != "" {
		return published
	}

	// Byline pattern: "প্রকাশ : ১৩ সেপ্টেম্বর ২০২৫, ২৩:১৭"
	if m := ittefaqDatePattern.FindStringSubmatch(doc.Text()); m != nil {
		if converted := convertBengaliDate(strings.TrimSpace(m[1])); converted != "" {
			return converted
		}
	}
	return ""
}

var bengaliDigits = strings.NewReplacer(
	"০", "0", "১", "1", "২", "2", "৩", "3", "৪", "4",
	"৫", "5", "৬", "6", "৭", "7", "৮", "8", "৯", "9",
)

var bengaliMonths = []struct {
	name string
	num  string
}{
	{"জানুয়ারি", "01"}, {"ফেব্রুয়ারি", "02"}, {"মার্চ", "03"}, {"এপ্রিল", "04"},
	{"মে", "05"}, {"জুন", "06"}, {"জুলাই", "07"}, {"আগস্ট", "08"},
	{"সেপ্টেম্বর", "09"}, {"অক্টোবর", "10"}, {"নভেম্বর", "11"}, {"ডিসেম্বর", "12"},
}

// convertBengaliDate turns "১৩ সেপ্টেম্বর ২০২৫, ২৩:১৭" into RFC 3339 at
// Bangladesh time (+06:00). Returns "" when the text does not parse.
func convertBengaliDate(bengaliDate string) string {
	text := bengaliDigits.Replace(bengaliDate)

	month := ""
	for _, m := range bengaliMonths {
		if strings.Contains(text, m.name) {
			month = m.num
			break
		}
	}
	if month == "" {
		return ""
	}

	fields := strings.Fields(strings.ReplaceAll(text, ",", " "))
	day, year, clock := "", "", ""
	for _, f := range fields {
		switch {
		case len(f) == 4 && isDigits(f):
			year = f
		case strings.Contains(f, ":"):
			clock = f
		case isDigits(f) && day == "":
			day = f
		}
	}
	if day == "" || year == "" {
		return ""
	}
	if len(day) == 1 {
		day = "0" + day
	}

	hour, minute := "00", "00"
	if clock != "" {
		parts := strings.Split(clock, ":")
		if len(parts) >= 2 && isDigits(parts[0]) && isDigits(parts[1]) {
			hour, minute = pad2(parts[0]), pad2(parts[1])
		}
	}
	return fmt.Sprintf("%s-%s-%sT%s:%s:00+06:00", year, month, day, hour, minute)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
