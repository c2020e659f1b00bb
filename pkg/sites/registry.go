package sites

import (
	"fmt"
	"strings"
	"sync"
)

// ExtractorBuilder creates an Extractor bound to a site configuration.
type ExtractorBuilder func(site Site) Extractor

// ExtractorRegistry resolves the extractor implementation for a site.
type ExtractorRegistry interface {
	ExtractorFor(site Site) (Extractor, error)
}

type extractorRegistry struct {
	mu       sync.RWMutex
	builders map[string]ExtractorBuilder
}

// NewExtractorRegistry builds a registry from the given builders keyed by site id.
func NewExtractorRegistry(builders map[string]ExtractorBuilder) ExtractorRegistry {
	reg := &extractorRegistry{builders: make(map[string]ExtractorBuilder)}
	for id, b := range builders {
		reg.register(id, b)
	}
	return reg
}

func (r *extractorRegistry) register(id string, builder ExtractorBuilder) {
	key := strings.ToLower(strings.TrimSpace(id))
	if key == "" || builder == nil {
		return
	}
	r.mu.Lock()
	r.builders[key] = builder
	r.mu.Unlock()
}

// ExtractorFor returns the extractor for the given site. An unknown site
// id is a configuration error surfaced before any network activity.
func (r *extractorRegistry) ExtractorFor(site Site) (Extractor, error) {
	if r == nil {
		return nil, fmt.Errorf("extractor registry is nil")
	}
	if strings.TrimSpace(site.ID) == "" {
		return nil, fmt.Errorf("site id is empty")
	}

	r.mu.RLock()
	builder := r.builders[strings.ToLower(strings.TrimSpace(site.ID))]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no extractor registered for site %q", site.ID)
	}
	return builder(site), nil
}

// DefaultExtractorRegistry wires up the known site extractors.
func DefaultExtractorRegistry() ExtractorRegistry {
	return NewExtractorRegistry(map[string]ExtractorBuilder{
		SiteProthomAlo: NewProthomAloExtractor,
		SiteIttefaq:    NewIttefaqExtractor,
	})
}
