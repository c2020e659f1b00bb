package domain

import (
	"strings"
	"time"
)

// Domain contains core models shared across the scraping pipeline.

// Article is one extracted news item. Instances are built by a site
// extractor right after parsing an article page and are immutable
// afterwards; Bengali text is carried as plain UTF-8 strings.
type Article struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	PublishedAt string    `json:"date"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url"`
	SiteName    string    `json:"site_name"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// Sanitize trims whitespace on all text fields and returns the cleaned copy.
func (a Article) Sanitize() Article {
	a.Title = strings.TrimSpace(a.Title)
	a.Content = strings.TrimSpace(a.Content)
	a.Author = strings.TrimSpace(a.Author)
	a.PublishedAt = strings.TrimSpace(a.PublishedAt)
	a.URL = strings.TrimSpace(a.URL)
	a.ImageURL = strings.TrimSpace(a.ImageURL)
	return a
}

// FailureRecord explains why one candidate link was dropped from a run.
type FailureRecord struct {
	URL    string `json:"url"`
	Stage  string `json:"stage"` // fetch, extract, validate
	Reason string `json:"reason"`
}

// RunStats aggregates the outcome of one orchestrator invocation.
type RunStats struct {
	SiteID    string          `json:"site_id"`
	SiteName  string          `json:"site_name"`
	Requested int             `json:"total_requested"`
	Found     int             `json:"total_found"`
	Validated int             `json:"total_valid"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"-"`
	Failures  []FailureRecord `json:"failures,omitempty"`
}

// SuccessRate returns validated/found as a percentage.
func (s RunStats) SuccessRate() float64 {
	if s.Found == 0 {
		return 0
	}
	return float64(s.Validated) / float64(s.Found) * 100
}

// RecordFailure appends a dropped-candidate record.
func (s *RunStats) RecordFailure(url, stage, reason string) {
	s.Failures = append(s.Failures, FailureRecord{URL: url, Stage: stage, Reason: reason})
}
