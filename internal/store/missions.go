package store

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
)

// Mission lifecycle statuses.
const (
	MissionActive    = "active"
	MissionCompleted = "completed"
	MissionFailed    = "failed"
	MissionSkipped   = "skipped"
)

// Mission is a concrete improvement task tied to a pattern.
type Mission struct {
	ID              int64
	PlayerID        int64
	PatternID       *int64
	Description     string
	FocusArea       string
	SuccessCriteria string
	Tips            []string
	Status          string
	ResultNotes     string
	CreatedAt       time.Time
	ResolvedAt      *time.Time
}

// CreateMission inserts a new active mission and returns its id.
func (s *Store) CreateMission(ctx context.Context, m *Mission) (int64, error) {
	tips, err := json.Marshal(m.Tips)
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.pool.QueryRow(ctx, `
		INSERT INTO missions (player_id, pattern_id, description, focus_area, success_criteria, tips)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, m.PlayerID, m.PatternID, m.Description, m.FocusArea, m.SuccessCriteria, tips).Scan(&id)
	return id, err
}

// ActiveMissions returns a player's open missions, oldest first.
func (s *Store) ActiveMissions(ctx context.Context, playerID int64) ([]Mission, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, player_id, pattern_id, description, focus_area, success_criteria,
		       tips, status, result_notes, created_at, resolved_at
		FROM missions
		WHERE player_id = $1 AND status = 'active'
		ORDER BY created_at
	`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Mission
	for rows.Next() {
		var m Mission
		var tips []byte
		if err := rows.Scan(&m.ID, &m.PlayerID, &m.PatternID, &m.Description, &m.FocusArea,
			&m.SuccessCriteria, &tips, &m.Status, &m.ResultNotes, &m.CreatedAt, &m.ResolvedAt); err != nil {
			return nil, err
		}
		if len(tips) > 0 {
			json.Unmarshal(tips, &m.Tips)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ResolveMission closes a mission with the given status and notes.
func (s *Store) ResolveMission(ctx context.Context, missionID int64, status, notes string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE missions
		SET status = $2, result_notes = $3, resolved_at = now()
		WHERE id = $1
	`, missionID, status, notes)
	return err
}
