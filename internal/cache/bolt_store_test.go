package cache

import (
	"bytes"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func newTestStore(t *testing.T, opts Options) *boltStore {
	t.Helper()
	storeRaw, err := openBolt(t.TempDir()+"/cache.db", normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreRoundTrip(t *testing.T) {
	store := newTestStore(t, Options{})

	const url = "https://www.prothomalo.com/bangladesh/abc123"
	payload := []byte(`{"title":"শিরোনাম"}`)

	if _, ok, err := store.Get(url); err != nil || ok {
		t.Fatalf("expected miss before put, ok=%v err=%v", ok, err)
	}

	if err := store.Put(url, Entry{Kind: KindArticle, Payload: payload}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entry, ok, err := store.Get(url)
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if entry.Kind != KindArticle || !bytes.Equal(entry.Payload, payload) {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.StoredAt.IsZero() || entry.TTL <= 0 {
		t.Fatalf("expected StoredAt and TTL to be filled, got %+v", entry)
	}

	// Equivalent URL (tracking params, fragment) must hit the same entry.
	if _, ok, _ := store.Get(url + "?utm_source=fb#top"); !ok {
		t.Fatal("expected hit via equivalent URL")
	}
}

func TestBoltStoreExpiryHidesButDoesNotDelete(t *testing.T) {
	store := newTestStore(t, Options{DefaultTTL: time.Minute})

	const url = "https://example.com/article"
	if err := store.Put(url, Entry{Kind: KindHTML, Payload: []byte("<html></html>")}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Move the clock past the TTL.
	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	if _, ok, err := store.Get(url); err != nil || ok {
		t.Fatalf("expected expired entry to read as miss, ok=%v err=%v", ok, err)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.EntryCount != 1 || stats.ExpiredCount != 1 {
		t.Fatalf("expected expired entry still counted, got %+v", stats)
	}

	removed, err := store.RemoveExpired()
	if err != nil || removed != 1 {
		t.Fatalf("RemoveExpired removed=%d err=%v", removed, err)
	}

	stats, _ = store.Stats()
	if stats.EntryCount != 0 {
		t.Fatalf("expected empty store after sweep, got %+v", stats)
	}
}

func TestBoltStoreCorruptEntryIsMiss(t *testing.T) {
	store := newTestStore(t, Options{})

	const url = "https://example.com/broken"
	err := store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(entryBucket)).Put([]byte(Key(url)), []byte("{not json"))
	})
	if err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	if _, ok, err := store.Get(url); err != nil || ok {
		t.Fatalf("expected corrupt entry to read as miss, ok=%v err=%v", ok, err)
	}

	// The sweep reclaims it.
	removed, err := store.RemoveExpired()
	if err != nil || removed != 1 {
		t.Fatalf("expected sweep to remove corrupt entry, removed=%d err=%v", removed, err)
	}
}

func TestBoltStoreClear(t *testing.T) {
	store := newTestStore(t, Options{})

	for _, u := range []string{"https://a.example/1", "https://a.example/2"} {
		if err := store.Put(u, Entry{Kind: KindHTML, Payload: []byte("x")}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	removed, err := store.Clear()
	if err != nil || removed != 2 {
		t.Fatalf("Clear removed=%d err=%v", removed, err)
	}
	if _, ok, _ := store.Get("https://a.example/1"); ok {
		t.Fatal("expected miss after clear")
	}
}

func TestBoltStoreStatsOldestEntry(t *testing.T) {
	store := newTestStore(t, Options{})

	old := time.Now().Add(-3 * time.Hour).Truncate(time.Second)
	if err := store.Put("https://a.example/old", Entry{Kind: KindHTML, Payload: []byte("x"), StoredAt: old, TTL: 24 * time.Hour}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put("https://a.example/new", Entry{Kind: KindHTML, Payload: []byte("y")}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.EntryCount != 2 || !stats.OldestEntry.Equal(old) {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Put("https://x.example", Entry{Kind: KindHTML}); err != nil {
		t.Fatalf("noop store Put: %v", err)
	}
	if _, ok, _ := store.Get("https://x.example"); ok {
		t.Fatal("noop store must always miss")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatal("expected error for unsupported cache type")
	}
}
