// Package cache keeps fetched match and timeline payloads in a local
// sqlite file. Finished matches never change, so a cache hit saves two API
// calls with no staleness risk.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/GepetoinTraining/lol-ai-coach/internal/riot"
)

type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache file.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	// Single-writer workload; WAL keeps reads cheap during a run.
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring cache: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS match_payloads (
			match_id TEXT PRIMARY KEY,
			match_json BLOB NOT NULL,
			timeline_json BLOB,
			fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache table: %w", err)
	}

	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached payloads for a match, or ok=false on a miss. A
// corrupt entry is treated as a miss.
func (c *Cache) Get(ctx context.Context, matchID string) (*riot.MatchResponse, *riot.TimelineResponse, bool) {
	var matchJSON, timelineJSON []byte
	err := c.db.QueryRowContext(ctx, `
		SELECT match_json, timeline_json FROM match_payloads WHERE match_id = ?
	`, matchID).Scan(&matchJSON, &timelineJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, false
	}
	if err != nil {
		return nil, nil, false
	}

	var match riot.MatchResponse
	if json.Unmarshal(matchJSON, &match) != nil {
		return nil, nil, false
	}

	// A NULL timeline means the match was fetched without one.
	if len(timelineJSON) == 0 {
		return &match, nil, true
	}
	var timeline riot.TimelineResponse
	if json.Unmarshal(timelineJSON, &timeline) != nil {
		return nil, nil, false
	}
	return &match, &timeline, true
}

// Put stores the payloads for a match.
func (c *Cache) Put(ctx context.Context, matchID string, match *riot.MatchResponse, timeline *riot.TimelineResponse) error {
	matchJSON, err := json.Marshal(match)
	if err != nil {
		return err
	}
	var timelineJSON []byte
	if timeline != nil {
		timelineJSON, err = json.Marshal(timeline)
		if err != nil {
			return err
		}
	}

	// Payloads are immutable, so an existing entry is kept as is. The one
	// exception is a timeline arriving for a match cached without one.
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO match_payloads (match_id, match_json, timeline_json)
		VALUES (?, ?, ?)
		ON CONFLICT (match_id) DO UPDATE SET
			timeline_json = COALESCE(match_payloads.timeline_json, excluded.timeline_json)
	`, matchID, matchJSON, timelineJSON)
	return err
}

// Count returns the number of cached matches.
func (c *Cache) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM match_payloads`).Scan(&n)
	return n, err
}
