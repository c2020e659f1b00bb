package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const entryBucket = "entries"

// boltStore implements Store backed by BoltDB. Each Put runs in its own
// transaction, which is the atomic-commit guarantee the pipeline relies on
// when the process is interrupted mid-write.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(entryBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		defaultTTL:      opts.DefaultTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Get looks up the entry for a URL. Expired and corrupt entries read as
// misses; they stay on disk until Clear or RemoveExpired so Stats can
// still account for them.
func (b *boltStore) Get(url string) (Entry, bool, error) {
	if b == nil || b.db == nil {
		return Entry{}, false, nil
	}

	var (
		entry Entry
		ok    bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(entryBucket))
		if bucket == nil {
			return fmt.Errorf("entry bucket missing")
		}

		value := bucket.Get([]byte(Key(url)))
		if value == nil {
			return nil
		}

		decoded, decodeErr := decodeEntry(value)
		if decodeErr != nil {
			// Corrupt entry reads as a miss; the sweep reclaims it.
			return nil
		}
		if decoded.Expired(b.now()) {
			return nil
		}

		entry = decoded
		ok = true
		return nil
	})
	return entry, ok, err
}

// Put stores the entry under the URL's normalized key, filling in
// StoredAt and the default TTL when unset.
func (b *boltStore) Put(url string, entry Entry) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if entry.StoredAt.IsZero() {
		entry.StoredAt = now
	}
	if entry.TTL <= 0 {
		entry.TTL = b.defaultTTL
	}

	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(entryBucket))
		if bucket == nil {
			return fmt.Errorf("entry bucket missing")
		}
		return bucket.Put([]byte(Key(url)), value)
	})
}

// Clear removes every entry and returns the number removed.
func (b *boltStore) Clear() (int, error) {
	if b == nil || b.db == nil {
		return 0, nil
	}

	removed := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(entryBucket))
		if bucket == nil {
			return fmt.Errorf("entry bucket missing")
		}

		cursor := bucket.Cursor()
		for k, _ := cursor.First(); k != nil; k, _ = cursor.Next() {
			if err := cursor.Delete(); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// RemoveExpired sweeps expired and corrupt entries and returns the number removed.
func (b *boltStore) RemoveExpired() (int, error) {
	if b == nil || b.db == nil {
		return 0, nil
	}
	return b.removeExpired(b.now())
}

func (b *boltStore) removeExpired(now time.Time) (int, error) {
	removed := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(entryBucket))
		if bucket == nil {
			return fmt.Errorf("entry bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			entry, err := decodeEntry(v)
			if err != nil || entry.Expired(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	return removed, err
}

// Stats reports entry counts and sizes, expired entries included.
func (b *boltStore) Stats() (Stats, error) {
	if b == nil || b.db == nil {
		return Stats{}, nil
	}

	now := b.now()
	var stats Stats
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(entryBucket))
		if bucket == nil {
			return fmt.Errorf("entry bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			stats.EntryCount++
			stats.TotalSize += int64(len(v))

			entry, err := decodeEntry(v)
			if err != nil || entry.Expired(now) {
				stats.ExpiredCount++
				continue
			}
			if stats.OldestEntry.IsZero() || entry.StoredAt.Before(stats.OldestEntry) {
				stats.OldestEntry = entry.StoredAt
			}
		}
		return nil
	})
	return stats, err
}

// maybeCleanupExpired sweeps expired entries on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	if _, err := b.removeExpired(now); err != nil {
		return err
	}
	b.lastCleanup.Store(now.Unix())
	return nil
}

func decodeEntry(value []byte) (Entry, error) {
	var entry Entry
	if err := json.Unmarshal(value, &entry); err != nil {
		return Entry{}, fmt.Errorf("decode cache entry: %w", err)
	}
	if entry.Kind != KindArticle && entry.Kind != KindHTML {
		return Entry{}, fmt.Errorf("unknown cache entry kind %q", entry.Kind)
	}
	return entry, nil
}
