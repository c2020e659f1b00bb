package publishers

import (
	"time"

	"github.com/Adda-Baaj/bangla-khobor/internal/domain"
)

// Event is the payload published downstream for each valid article.
type Event struct {
	SiteID      string         `json:"site_id"`
	SiteName    string         `json:"site_name"`
	Article     domain.Article `json:"article"`
	CollectedAt time.Time      `json:"collected_at"`
}

// NewEvent constructs an Event for the given site + article.
func NewEvent(siteID, siteName string, article domain.Article) Event {
	return Event{
		SiteID:      siteID,
		SiteName:    siteName,
		Article:     article,
		CollectedAt: time.Now().UTC(),
	}
}
