package layercache

import (
	"path/filepath"
	"testing"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layers.sqlite")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGetRoundTrip(t *testing.T) {
	c := openTestCache(t)
	key := Key([]byte("subtree-bytes"), 2.5)

	if _, ok, err := c.Get(key); err != nil || ok {
		t.Fatalf("expected a miss on an empty cache, got ok=%v err=%v", ok, err)
	}

	if err := c.Put(key, 2.5, []byte("payload")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected a hit after Put")
	}
	if string(got) != "payload" {
		t.Errorf("expected payload round-trip, got %q", got)
	}
}

func TestKeyIsStableAndDistinguishesZ(t *testing.T) {
	subtree := []byte("same-subtree")
	k1 := Key(subtree, 1.0)
	k2 := Key(subtree, 1.0)
	k3 := Key(subtree, 2.0)
	if k1 != k2 {
		t.Errorf("expected identical inputs to hash identically")
	}
	if k1 == k3 {
		t.Errorf("expected different z to change the cache key")
	}
}

func TestClearRemovesEntries(t *testing.T) {
	c := openTestCache(t)
	key := Key([]byte("x"), 0)
	if err := c.Put(key, 0, []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := c.Get(key); ok {
		t.Errorf("expected no entries after Clear")
	}
}

func TestStatsReportsEntriesAndBytes(t *testing.T) {
	c := openTestCache(t)
	if err := c.Put(Key([]byte("a"), 0), 0, []byte("payload-a")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put(Key([]byte("b"), 1), 1, []byte("payload-bb")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	entries, total, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if entries != 2 {
		t.Errorf("expected 2 entries, got %d", entries)
	}
	wantBytes := int64(len("payload-a") + len("payload-bb"))
	if total != wantBytes {
		t.Errorf("expected %d total payload bytes, got %d", wantBytes, total)
	}
}
