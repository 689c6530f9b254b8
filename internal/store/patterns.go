package store

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/GepetoinTraining/lol-ai-coach/internal/pattern"
)

// PatternRow is the full persisted view of one pattern, used for reporting
// and coaching payloads.
type PatternRow struct {
	ID          int64
	PlayerID    int64
	Key         pattern.Key
	Category    string
	Description string
	State       pattern.State
	LastSeenAt  time.Time
}

// MatchProcessed reports whether a match was already folded into pattern
// state for this player.
func (s *Store) MatchProcessed(ctx context.Context, playerID int64, matchID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM processed_matches WHERE player_id = $1 AND match_id = $2)
	`, playerID, matchID).Scan(&exists)
	return exists, err
}

// States loads every pattern state for a player.
func (s *Store) States(ctx context.Context, playerID int64) (map[pattern.Key]pattern.State, error) {
	rows, err := s.patternRows(ctx, playerID, "")
	if err != nil {
		return nil, err
	}
	states := make(map[pattern.Key]pattern.State, len(rows))
	for _, r := range rows {
		states[r.Key] = r.State
	}
	return states, nil
}

// ApplyMatch commits a match's pattern updates together with its
// processed-match marker in one transaction. Either the match is fully
// folded in or not at all; there is no partial state to double-count on a
// retried run.
func (s *Store) ApplyMatch(ctx context.Context, playerID int64, matchID string, updates []pattern.Update) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, u := range updates {
		samples, err := json.Marshal(u.State.SampleDeathIDs)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO patterns (
				player_id, pattern_key, pattern_category, description,
				occurrences, games_since_last, improvement_streak,
				status, last_match_id, last_seen_at, sample_death_ids
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), $10)
			ON CONFLICT (player_id, pattern_key) DO UPDATE SET
				occurrences = EXCLUDED.occurrences,
				games_since_last = EXCLUDED.games_since_last,
				improvement_streak = EXCLUDED.improvement_streak,
				status = EXCLUDED.status,
				last_match_id = EXCLUDED.last_match_id,
				last_seen_at = CASE
					WHEN EXCLUDED.games_since_last = 0 THEN now()
					ELSE patterns.last_seen_at
				END,
				sample_death_ids = EXCLUDED.sample_death_ids
		`, playerID, string(u.Key), u.Category, u.Description,
			u.State.Occurrences, u.State.GamesSinceLast, u.State.ImprovementStreak,
			string(u.State.Status), u.State.LastMatchID, samples); err != nil {
			return fmt.Errorf("upserting pattern %s: %w", u.Key, err)
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO processed_matches (player_id, match_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, playerID, matchID); err != nil {
		return fmt.Errorf("marking match processed: %w", err)
	}

	return tx.Commit(ctx)
}

// Patterns returns every pattern row for a player, highest priority first.
func (s *Store) Patterns(ctx context.Context, playerID int64) ([]PatternRow, error) {
	return s.patternRows(ctx, playerID, "")
}

// ActivePatterns returns only patterns still in the active status.
func (s *Store) ActivePatterns(ctx context.Context, playerID int64) ([]PatternRow, error) {
	return s.patternRows(ctx, playerID, string(pattern.StatusActive))
}

func (s *Store) patternRows(ctx context.Context, playerID int64, status string) ([]PatternRow, error) {
	query := `
		SELECT id, player_id, pattern_key, pattern_category, description,
		       occurrences, games_since_last, improvement_streak,
		       status, last_match_id, last_seen_at, sample_death_ids
		FROM patterns
		WHERE player_id = $1`
	args := []any{playerID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY occurrences::float / (games_since_last + 1) DESC, pattern_key`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PatternRow
	for rows.Next() {
		var r PatternRow
		var key, st string
		var samples []byte
		if err := rows.Scan(&r.ID, &r.PlayerID, &key, &r.Category, &r.Description,
			&r.State.Occurrences, &r.State.GamesSinceLast, &r.State.ImprovementStreak,
			&st, &r.State.LastMatchID, &r.LastSeenAt, &samples); err != nil {
			return nil, err
		}
		r.Key = pattern.Key(key)
		r.State.Status = pattern.Status(st)
		if len(samples) > 0 {
			if err := json.Unmarshal(samples, &r.State.SampleDeathIDs); err != nil {
				return nil, fmt.Errorf("decoding sample death ids for pattern %s: %w", key, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
