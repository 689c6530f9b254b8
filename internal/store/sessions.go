package store

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
)

// CoachingSession records one analyzer run and what it surfaced.
type CoachingSession struct {
	ID                int64
	PlayerID          int64
	RunID             string
	FocusArea         string
	MatchesAnalyzed   int
	PatternsDiscussed []string
	Insights          string
	CreatedAt         time.Time
}

// RecordSession stores a completed run.
func (s *Store) RecordSession(ctx context.Context, sess *CoachingSession) (int64, error) {
	discussed, err := json.Marshal(sess.PatternsDiscussed)
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.pool.QueryRow(ctx, `
		INSERT INTO coaching_sessions (player_id, run_id, focus_area, matches_analyzed, patterns_discussed, insights)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, sess.PlayerID, sess.RunID, sess.FocusArea, sess.MatchesAnalyzed, discussed, sess.Insights).Scan(&id)
	return id, err
}

// LastSession returns the most recent session for a player, or nil when
// the player has never been analyzed.
func (s *Store) LastSession(ctx context.Context, playerID int64) (*CoachingSession, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, player_id, run_id, focus_area, matches_analyzed, patterns_discussed, insights, created_at
		FROM coaching_sessions
		WHERE player_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var sess CoachingSession
	var discussed []byte
	if err := rows.Scan(&sess.ID, &sess.PlayerID, &sess.RunID, &sess.FocusArea,
		&sess.MatchesAnalyzed, &discussed, &sess.Insights, &sess.CreatedAt); err != nil {
		return nil, err
	}
	if len(discussed) > 0 {
		json.Unmarshal(discussed, &sess.PatternsDiscussed)
	}
	return &sess, nil
}
