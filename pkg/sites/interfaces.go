package sites

import (
	"fmt"

	"github.com/Adda-Baaj/bangla-khobor/internal/domain"
)

// Extractor converts raw site HTML into structured articles. Concrete
// implementations live in site-specific files (e.g., prothomalo.go) and
// own all selector knowledge for their site; callers never see past this
// contract. Extractors do not perform network calls.
type Extractor interface {
	ID() string
	Name() string
	BaseURL() string

	// ListingPages returns the ordered listing URLs to scan for candidate
	// links, homepage first.
	ListingPages() []string

	// DiscoverLinks parses a listing page into candidate article URLs in
	// document order, deduplicated, relative hrefs resolved. limit == 0
	// means no cap.
	DiscoverLinks(listingHTML []byte, contentType string, limit int) ([]string, error)

	// Extract parses one article page into an Article. Failures are
	// *ExtractionError values and never abort a run.
	Extract(articleHTML []byte, contentType, pageURL string) (domain.Article, error)
}

// Extraction failure kinds.
const (
	ExtractionMissingField  = "missing_field"
	ExtractionMalformedHTML = "malformed_html"
)

// ExtractionError reports why an article page could not be parsed.
type ExtractionError struct {
	URL   string
	Kind  string
	Field string
	Err   error
}

func (e *ExtractionError) Error() string {
	if e.Kind == ExtractionMissingField {
		return fmt.Sprintf("extract %s: missing %s", e.URL, e.Field)
	}
	return fmt.Sprintf("extract %s: malformed html: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func missingField(url, field string) *ExtractionError {
	return &ExtractionError{URL: url, Kind: ExtractionMissingField, Field: field}
}

func malformedHTML(url string, err error) *ExtractionError {
	return &ExtractionError{URL: url, Kind: ExtractionMalformedHTML, Err: err}
}
