package sites

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Package sites contains the per-site configuration registry and the
// extractor implementations for the supported Bangladeshi news sites.

// Site describes one configured news source.
type Site struct {
	ID              string         `json:"id" yaml:"id"`
	Name            string         `json:"name" yaml:"name"`
	BaseURL         string         `json:"base_url" yaml:"base_url"`
	Sections        []string       `json:"sections" yaml:"sections"`
	RequestDelayMs  int            `json:"request_delay_ms" yaml:"request_delay_ms"`
	CacheTTLSeconds int64          `json:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`
	Config          map[string]any `json:"config" yaml:"config"`
}

// RequestDelay returns the per-request throttle for the site, or zero when
// the site defers to the application default.
func (s Site) RequestDelay() time.Duration {
	if s.RequestDelayMs <= 0 {
		return 0
	}
	return time.Duration(s.RequestDelayMs) * time.Millisecond
}

// CacheTTL returns the site-specific cache validity window, or zero when
// the site defers to the application default.
func (s Site) CacheTTL() time.Duration {
	if s.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// Site identifiers for the built-in configurations.
const (
	SiteProthomAlo = "prothom-alo"
	SiteIttefaq    = "ittefaq"
)

// Builtin returns the shipped site configurations. An external sites file
// can replace them entirely.
func Builtin() []Site {
	return []Site{
		{
			ID:      SiteProthomAlo,
			Name:    "Prothom Alo",
			BaseURL: "https://www.prothomalo.com",
			Sections: []string{
				"/bangladesh",
				"/world",
				"/sports",
				"/entertainment",
				"/business",
				"/opinion",
				"/politics",
				"/lifestyle",
				"/tech",
			},
		},
		{
			ID:      SiteIttefaq,
			Name:    "The Daily Ittefaq",
			BaseURL: "https://www.ittefaq.com.bd",
		},
	}
}

type sitesFile struct {
	Sites []Site `json:"sites" yaml:"sites"`
}

// Registry resolves site configurations by id.
type Registry struct {
	sites []Site
	idx   map[string]Site
}

// NewRegistry builds a registry from the given site list.
func NewRegistry(list []Site) (*Registry, error) {
	if len(list) == 0 {
		return nil, errors.New("no sites configured")
	}

	reg := &Registry{
		sites: make([]Site, len(list)),
		idx:   make(map[string]Site, len(list)),
	}
	for i := range list {
		s := sanitizeSite(list[i])
		if err := validateSite(s); err != nil {
			return nil, fmt.Errorf("site[%d]: %w", i, err)
		}
		if _, exists := reg.idx[s.ID]; exists {
			return nil, fmt.Errorf("duplicate site id %q", s.ID)
		}
		reg.sites[i] = s
		reg.idx[s.ID] = s
	}
	return reg, nil
}

// LoadRegistry loads site configurations from a YAML/JSON file, or falls
// back to the built-in list when path is empty.
func LoadRegistry(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return NewRegistry(Builtin())
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sites file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sites file: %w", err)
	}

	parsed, err := parseSitesFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Sites) == 0 {
		return nil, errors.New("sites file contains no sites entries")
	}

	return NewRegistry(parsed.Sites)
}

func parseSitesFile(data []byte, ext string) (sitesFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out sitesFile
		if err := d.fn(data, &out); err == nil {
			return out, nil
		}
	}

	return sitesFile{}, errors.New("sites file format not recognized (expected YAML or JSON)")
}

func sanitizeSite(s Site) Site {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if s.Config == nil {
		s.Config = map[string]any{}
	}
	return s
}

func validateSite(s Site) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("name is required for site %q", s.ID)
	}
	if s.BaseURL == "" {
		return fmt.Errorf("base_url is required for site %q", s.ID)
	}
	return nil
}

// All returns a copy of the configured sites.
func (r *Registry) All() []Site {
	if r == nil {
		return nil
	}
	out := make([]Site, len(r.sites))
	copy(out, r.sites)
	return out
}

// ByID returns the site entry for the given id, if configured.
func (r *Registry) ByID(id string) (Site, bool) {
	if r == nil {
		return Site{}, false
	}
	s, ok := r.idx[strings.TrimSpace(id)]
	return s, ok
}
