package store

import (
	"context"
	"time"
)

// VODMoment is one death queued for the player to re-watch and reflect on.
type VODMoment struct {
	ID                  int64
	PlayerID            int64
	DeathID             int64
	PatternID           *int64
	CoachQuestion       string
	Reviewed            bool
	PlayerResponse      string
	CoachInsight        string
	HadBreakthrough     bool
	BreakthroughInsight string
	CreatedAt           time.Time
	ReviewedAt          *time.Time
}

// CreateVODMoment queues a death for review.
func (s *Store) CreateVODMoment(ctx context.Context, v *VODMoment) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO vod_moments (player_id, death_id, pattern_id, coach_question)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, v.PlayerID, v.DeathID, v.PatternID, v.CoachQuestion).Scan(&id)
	return id, err
}

// UnreviewedVODMoments returns moments still waiting for review.
func (s *Store) UnreviewedVODMoments(ctx context.Context, playerID int64) ([]VODMoment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, player_id, death_id, pattern_id, coach_question,
		       reviewed, player_response, coach_insight,
		       had_breakthrough, breakthrough_insight, created_at, reviewed_at
		FROM vod_moments
		WHERE player_id = $1 AND NOT reviewed
		ORDER BY created_at
	`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VODMoment
	for rows.Next() {
		var v VODMoment
		if err := rows.Scan(&v.ID, &v.PlayerID, &v.DeathID, &v.PatternID, &v.CoachQuestion,
			&v.Reviewed, &v.PlayerResponse, &v.CoachInsight,
			&v.HadBreakthrough, &v.BreakthroughInsight, &v.CreatedAt, &v.ReviewedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// RecordVODReview stores the player's reflection on a moment.
func (s *Store) RecordVODReview(ctx context.Context, momentID int64, response, insight string, breakthrough bool, breakthroughInsight string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE vod_moments
		SET reviewed = true,
		    player_response = $2,
		    coach_insight = $3,
		    had_breakthrough = $4,
		    breakthrough_insight = $5,
		    reviewed_at = now()
		WHERE id = $1
	`, momentID, response, insight, breakthrough, breakthroughInsight)
	return err
}
