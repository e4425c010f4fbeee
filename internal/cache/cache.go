// Package cache stores compiled comprehensions in SQLite so generate only
// recompiles entries whose source, target or options changed.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/funvibe/comprehend/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS compiled (
	key        TEXT PRIMARY KEY,
	code       TEXT NOT NULL,
	type       TEXT NOT NULL,
	imports    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`

// Entry is one cached compilation.
type Entry struct {
	Code      string
	Type      string
	Imports   []string
	CreatedAt time.Time
}

// Cache wraps the database.
type Cache struct {
	db   *sql.DB
	path string
}

// Open opens or creates the cache at path. ":memory:" gives a private
// in-memory cache.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	if path == ":memory:" {
		// Every connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &Cache{db: db, path: path}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) Path() string {
	return c.path
}

// Key derives the cache key of one compilation. The compiler version is
// part of the key, so upgrading invalidates every entry.
func Key(source, target string, opts config.Options) string {
	h := sha256.New()
	for _, part := range []string{config.Version, source, target, opts.String()} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get looks up key. A miss returns nil and no error.
func (c *Cache) Get(key string) (*Entry, error) {
	row := c.db.QueryRow(`SELECT code, type, imports, created_at FROM compiled WHERE key = ?`, key)

	var e Entry
	var imports string
	var created int64
	err := row.Scan(&e.Code, &e.Type, &imports, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}
	if imports != "" {
		e.Imports = strings.Split(imports, "\n")
	}
	e.CreatedAt = time.Unix(created, 0).UTC()
	return &e, nil
}

// Put stores or replaces the entry for key. CreatedAt is set by Put.
func (c *Cache) Put(key string, e Entry) error {
	_, err := c.db.Exec(`
		INSERT INTO compiled (key, code, type, imports, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			code = excluded.code,
			type = excluded.type,
			imports = excluded.imports,
			created_at = excluded.created_at
	`, key, e.Code, e.Type, strings.Join(e.Imports, "\n"), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("storing cache entry: %w", err)
	}
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM compiled`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}

// Prune removes entries created before cutoff and reports how many went.
func (c *Cache) Prune(cutoff time.Time) (int64, error) {
	res, err := c.db.Exec(`DELETE FROM compiled WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}
