package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Adda-Baaj/bangla-khobor/internal/domain"
	"github.com/Adda-Baaj/bangla-khobor/internal/logger"
)

// Package output serializes scrape results to disk. The pipeline itself
// never writes files; it hands articles and stats to a Writer.

// Supported formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Writer persists one run's results.
type Writer interface {
	Write(articles []domain.Article, stats domain.RunStats) (string, error)
}

// NewWriter returns the writer for the given format, rooted at dir.
// Files land in a per-format subdirectory with dated names, e.g.
// output/json/2025-08-29_prothom-alo.json.
func NewWriter(format, dir string) (Writer, error) {
	switch strings.TrimSpace(strings.ToLower(format)) {
	case "", FormatJSON:
		return &jsonWriter{dir: dir, now: time.Now}, nil
	case FormatCSV:
		return &csvWriter{dir: dir, now: time.Now}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// envelope is the JSON document shape: the article list plus run totals.
type envelope struct {
	Site            string           `json:"site"`
	Articles        []domain.Article `json:"articles"`
	TotalRequested  int              `json:"total_requested"`
	TotalFound      int              `json:"total_found"`
	TotalValid      int              `json:"total_valid"`
	SuccessRate     float64          `json:"success_rate"`
	DurationSeconds float64          `json:"duration_seconds"`
	StartedAt       time.Time        `json:"started_at"`

	Failures []domain.FailureRecord `json:"failures,omitempty"`
}

type jsonWriter struct {
	dir string
	now func() time.Time
}

func (w *jsonWriter) Write(articles []domain.Article, stats domain.RunStats) (string, error) {
	if articles == nil {
		articles = []domain.Article{}
	}
	doc := envelope{
		Site:            stats.SiteID,
		Articles:        articles,
		TotalRequested:  stats.Requested,
		TotalFound:      stats.Found,
		TotalValid:      stats.Validated,
		SuccessRate:     stats.SuccessRate(),
		DurationSeconds: stats.Duration.Seconds(),
		StartedAt:       stats.StartedAt,
		Failures:        stats.Failures,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode articles: %w", err)
	}
	data = append(data, '\n')

	path, err := w.targetPath(FormatJSON, stats.SiteID)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	logger.InfoObj("results written", "output_file", map[string]any{
		"path":     path,
		"articles": len(articles),
		"format":   FormatJSON,
	})
	return path, nil
}

func (w *jsonWriter) targetPath(format, siteID string) (string, error) {
	return targetPath(w.dir, format, siteID, w.now())
}

// csvColumns is the fixed CSV column order.
var csvColumns = []string{"title", "content", "author", "date", "url", "image_url", "site_name", "scraped_at"}

type csvWriter struct {
	dir string
	now func() time.Time
}

func (w *csvWriter) Write(articles []domain.Article, stats domain.RunStats) (string, error) {
	path, err := targetPath(w.dir, FormatCSV, stats.SiteID, w.now())
	if err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(csvColumns); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, a := range articles {
		row := []string{
			scrub(a.Title),
			scrub(a.Content),
			scrub(a.Author),
			scrub(a.PublishedAt),
			a.URL,
			a.ImageURL,
			a.SiteName,
			a.ScrapedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	logger.InfoObj("results written", "output_file", map[string]any{
		"path":     path,
		"articles": len(articles),
		"format":   FormatCSV,
	})
	return path, nil
}

// scrub flattens newlines so multi-paragraph Bengali content stays on one
// CSV row even in tools that mishandle quoted line breaks.
func scrub(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func targetPath(dir, format, siteID string, now time.Time) (string, error) {
	sub := filepath.Join(dir, format)
	if err := os.MkdirAll(sub, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", sub, err)
	}
	name := fmt.Sprintf("%s_%s.%s", now.Format("2006-01-02"), siteID, format)
	return filepath.Join(sub, name), nil
}
