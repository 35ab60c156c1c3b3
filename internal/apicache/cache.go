// Package apicache is a local sqlite cache for external API responses,
// so repeated enrichment runs don't re-spend rate-limited quota on
// companies already looked up.
package apicache

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Cache stores raw API response bodies keyed by (source, key) with a TTL.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

const schema = `
CREATE TABLE IF NOT EXISTS api_responses (
	source     TEXT NOT NULL,
	key        TEXT NOT NULL,
	body       BLOB NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (source, key)
);
`

// Open creates or opens the cache database at path.
func Open(path string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "apicache: open")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "apicache: migrate")
	}
	return &Cache{db: db, ttl: ttl}, nil
}

// Get returns the cached body for (source, key), or nil on a miss.
// Entries older than the TTL are misses and get purged.
func (c *Cache) Get(ctx context.Context, source, key string) ([]byte, error) {
	var body []byte
	var fetchedAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT body, fetched_at FROM api_responses WHERE source=? AND key=?`,
		source, key,
	).Scan(&body, &fetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "apicache: get")
	}

	if time.Since(time.Unix(fetchedAt, 0)) > c.ttl {
		_, err := c.db.ExecContext(ctx,
			`DELETE FROM api_responses WHERE source=? AND key=?`, source, key)
		if err != nil {
			return nil, eris.Wrap(err, "apicache: evict")
		}
		return nil, nil
	}
	return body, nil
}

// Put stores a response body, replacing any prior entry.
func (c *Cache) Put(ctx context.Context, source, key string, body []byte) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO api_responses (source, key, body, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (source, key) DO UPDATE SET body=excluded.body, fetched_at=excluded.fetched_at`,
		source, key, body, time.Now().Unix())
	if err != nil {
		return eris.Wrap(err, "apicache: put")
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
