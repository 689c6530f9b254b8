package store

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/GepetoinTraining/lol-ai-coach/internal/analysis"
)

// StoredDeath is a persisted death row.
type StoredDeath struct {
	ID int64
	analysis.Death
	PlayerID int64
}

// ReplaceDeaths stores a match's deaths for a player, replacing any earlier
// rows for the same match so re-ingestion cannot duplicate them. Returns
// the stored rows with their ids, in the order given.
func (s *Store) ReplaceDeaths(ctx context.Context, playerID int64, matchID string, deaths []analysis.Death) ([]StoredDeath, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM deaths WHERE match_id = $1 AND player_id = $2
	`, matchID, playerID); err != nil {
		return nil, fmt.Errorf("clearing old deaths: %w", err)
	}

	stored := make([]StoredDeath, 0, len(deaths))
	for _, d := range deaths {
		assists, err := json.Marshal(d.AssistingChampions)
		if err != nil {
			return nil, err
		}

		var id int64
		err = tx.QueryRow(ctx, `
			INSERT INTO deaths (
				match_id, player_id, game_timestamp_ms, game_phase,
				position_x, position_y, map_zone, player_champion,
				killer_participant_id, killer_champion, assisting_champions,
				had_ward_nearby, overextended,
				gold_diff, cs_diff, level_diff, player_gold, player_level,
				death_type
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
			RETURNING id
		`, d.MatchID, playerID, d.TimestampMS, string(d.Phase),
			d.PositionX, d.PositionY, string(d.Zone), d.PlayerChampion,
			d.KillerParticipantID, d.KillerChampion, assists,
			d.HadWardNearby, d.Overextended,
			d.GoldDiff, d.CSDiff, d.LevelDiff, d.PlayerGold, d.PlayerLevel,
			string(d.Type)).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("inserting death: %w", err)
		}
		stored = append(stored, StoredDeath{ID: id, Death: d, PlayerID: playerID})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return stored, nil
}

// DeathsByIDs fetches death rows by id, ordered by in-game timestamp.
func (s *Store) DeathsByIDs(ctx context.Context, ids []int64) ([]StoredDeath, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, match_id, player_id, game_timestamp_ms, game_phase,
		       position_x, position_y, map_zone, player_champion,
		       killer_participant_id, killer_champion, assisting_champions,
		       had_ward_nearby, overextended,
		       gold_diff, cs_diff, level_diff, player_gold, player_level,
		       death_type
		FROM deaths
		WHERE id = ANY($1)
		ORDER BY game_timestamp_ms
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDeaths(rows)
}

// RecentDeaths returns a player's most recent deaths, newest first.
func (s *Store) RecentDeaths(ctx context.Context, playerID int64, limit int) ([]StoredDeath, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT d.id, d.match_id, d.player_id, d.game_timestamp_ms, d.game_phase,
		       d.position_x, d.position_y, d.map_zone, d.player_champion,
		       d.killer_participant_id, d.killer_champion, d.assisting_champions,
		       d.had_ward_nearby, d.overextended,
		       d.gold_diff, d.cs_diff, d.level_diff, d.player_gold, d.player_level,
		       d.death_type
		FROM deaths d
		JOIN matches m ON m.match_id = d.match_id AND m.player_id = d.player_id
		WHERE d.player_id = $1
		ORDER BY m.played_at DESC, d.game_timestamp_ms DESC
		LIMIT $2
	`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDeaths(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanDeaths(rows pgxRows) ([]StoredDeath, error) {
	var out []StoredDeath
	for rows.Next() {
		var d StoredDeath
		var phase, zone, deathType string
		var assists []byte
		if err := rows.Scan(&d.ID, &d.MatchID, &d.PlayerID, &d.TimestampMS, &phase,
			&d.PositionX, &d.PositionY, &zone, &d.PlayerChampion,
			&d.KillerParticipantID, &d.KillerChampion, &assists,
			&d.HadWardNearby, &d.Overextended,
			&d.GoldDiff, &d.CSDiff, &d.LevelDiff, &d.PlayerGold, &d.PlayerLevel,
			&deathType); err != nil {
			return nil, err
		}
		d.Phase = analysis.GamePhase(phase)
		d.Zone = analysis.MapZone(zone)
		d.Type = analysis.DeathType(deathType)
		if len(assists) > 0 {
			if err := json.Unmarshal(assists, &d.AssistingChampions); err != nil {
				return nil, fmt.Errorf("decoding assisting champions for death %d: %w", d.ID, err)
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
