package cache

import (
	"fmt"
	"strings"
	"time"
)

// Package cache provides the URL-keyed persistence layer that makes
// repeated scrape runs idempotent: fetched HTML and extracted articles are
// stored under the normalized article URL with a validity window.

// Payload kinds stored in an Entry.
const (
	KindArticle = "article"
	KindHTML    = "html"
)

// Entry is one previously fetched resource.
type Entry struct {
	Kind     string        `json:"kind"`
	Payload  []byte        `json:"payload"`
	StoredAt time.Time     `json:"stored_at"`
	TTL      time.Duration `json:"ttl"`
}

// Expired reports whether the entry's validity window has elapsed at now.
func (e Entry) Expired(now time.Time) bool {
	if e.TTL <= 0 {
		return false
	}
	return now.Sub(e.StoredAt) > e.TTL
}

// Stats summarizes the store contents, expired entries included: expiry
// hides entries from Get but only Clear or RemoveExpired delete them.
type Stats struct {
	EntryCount   int       `json:"entry_count"`
	ExpiredCount int       `json:"expired_count"`
	TotalSize    int64     `json:"total_size_bytes"`
	OldestEntry  time.Time `json:"oldest_entry,omitempty"`
}

// Store is the cache contract. Get returns ok=false for misses, expired
// entries, and corrupt entries alike; it never fails the caller over a bad
// record. Put must commit atomically so an interrupted process cannot
// leave a partial entry behind.
type Store interface {
	Get(url string) (Entry, bool, error)
	Put(url string, entry Entry) error
	Clear() (int, error)
	RemoveExpired() (int, error)
	Stats() (Stats, error)
	Close() error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
}

const (
	defaultEntryTTL        = 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured cache backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt cache requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported cache type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = defaultEntryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Get(string) (Entry, bool, error) { return Entry{}, false, nil }
func (noopStore) Put(string, Entry) error         { return nil }
func (noopStore) Clear() (int, error)             { return 0, nil }
func (noopStore) RemoveExpired() (int, error)     { return 0, nil }
func (noopStore) Stats() (Stats, error)           { return Stats{}, nil }
func (noopStore) Close() error                    { return nil }
