// Package layercache persists computed layers keyed by a hash of the CSG3
// subtree and z-plane that produced them, so re-running the pipeline on an
// unchanged model (e.g. during interactive preview) can skip straight to
// EVALUATED for layers it has already computed. It is modeled on the
// teacher's internal/database.DBManager -- one sql.DB per cache file,
// connection-pool tuning on open -- narrowed from "manage arbitrary named connections to
// arbitrary SQL backends" down to "manage one modernc.org/sqlite-backed
// cache file."
package layercache

import (
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	_ "modernc.org/sqlite"
	"golang.org/x/crypto/blake2b"
)

// Cache wraps a single sqlite-backed layer cache file.
type Cache struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates (or reuses) the cache database at path and ensures its
// schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("layercache: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("layercache: ping %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite is not safe for concurrent writers
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	const schema = `
CREATE TABLE IF NOT EXISTS layers (
	key        TEXT PRIMARY KEY,
	z          REAL NOT NULL,
	payload    BLOB NOT NULL,
	created_at INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("layercache: schema: %w", err)
	}
	c := &Cache{db: db}
	if fi, err := os.Stat(path); err == nil {
		log.Printf("layercache: opened %s (%s on disk)", path, humanize.Bytes(uint64(fi.Size())))
	}
	return c, nil
}

// Stats reports the cache's entry count and total payload size, logged the
// way the teacher's arena/pool stats are: a count with humanize.Comma and a
// size with humanize.Bytes, not raw byte counts.
func (c *Cache) Stats() (entries int, totalBytes int64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := c.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(LENGTH(payload)), 0) FROM layers`)
	if err := row.Scan(&entries, &totalBytes); err != nil {
		return 0, 0, fmt.Errorf("layercache: stats: %w", err)
	}
	log.Printf("layercache: %s entries, %s", humanize.Comma(int64(entries)), humanize.Bytes(uint64(totalBytes)))
	return entries, totalBytes, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key derives a stable cache key from the serialized CSG3 subtree bytes
// that feed one layer's slice+evaluate pass and the z-plane it was cut at.
// blake2b-256 is used for the same reason the teacher's corpus reaches for
// it elsewhere: a fast, non-cryptographically-load-bearing content hash
// with a comfortable collision margin, not a password or signing primitive.
func Key(subtreeBytes []byte, z float64) string {
	h, _ := blake2b.New256(nil)
	h.Write(subtreeBytes)
	fmt.Fprintf(h, "|%g", z)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached payload for key, or ok=false on a miss.
func (c *Cache) Get(key string) (payload []byte, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := c.db.QueryRow(`SELECT payload FROM layers WHERE key = ?`, key)
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("layercache: get: %w", err)
	}
	return payload, true, nil
}

// Put stores (or replaces) the payload for key.
func (c *Cache) Put(key string, z float64, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		`INSERT INTO layers(key, z, payload, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		key, z, payload, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("layercache: put: %w", err)
	}
	return nil
}

// Clear removes every cached layer.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.db.Exec(`DELETE FROM layers`)
	return err
}

// SameKey reports whether two cache keys match using a constant-time
// comparison, mirroring the teacher's habit of never comparing
// hash-derived identifiers with a plain ==.
func SameKey(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
