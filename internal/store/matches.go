package store

import (
	"context"
	"time"
)

// Match is one player's record of one game.
type Match struct {
	ID              int64
	MatchID         string
	PlayerID        int64
	Champion        string
	Role            string
	Win             bool
	Kills           int
	Deaths          int
	Assists         int
	CS              int
	VisionScore     int
	GameDurationSec int
	PlayedAt        time.Time
}

// InsertMatch inserts a match record if it doesn't exist. Re-ingesting the
// same match for the same player never produces a duplicate row.
func (s *Store) InsertMatch(ctx context.Context, m *Match) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO matches (
			match_id, player_id, champion, role, win,
			kills, deaths, assists, cs, vision_score,
			game_duration_sec, played_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (match_id, player_id) DO NOTHING
	`, m.MatchID, m.PlayerID, m.Champion, m.Role, m.Win,
		m.Kills, m.Deaths, m.Assists, m.CS, m.VisionScore,
		m.GameDurationSec, m.PlayedAt)
	return err
}

// MatchExists checks whether a match is already stored for a player.
func (s *Store) MatchExists(ctx context.Context, playerID int64, matchID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM matches WHERE match_id = $1 AND player_id = $2)
	`, matchID, playerID).Scan(&exists)
	return exists, err
}

// RecentMatches returns a player's most recent stored matches.
func (s *Store) RecentMatches(ctx context.Context, playerID int64, limit int) ([]Match, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, match_id, player_id, champion, role, win,
		       kills, deaths, assists, cs, vision_score,
		       game_duration_sec, played_at
		FROM matches
		WHERE player_id = $1
		ORDER BY played_at DESC
		LIMIT $2
	`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.MatchID, &m.PlayerID, &m.Champion, &m.Role, &m.Win,
			&m.Kills, &m.Deaths, &m.Assists, &m.CS, &m.VisionScore,
			&m.GameDurationSec, &m.PlayedAt); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
