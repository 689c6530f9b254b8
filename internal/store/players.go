package store

import (
	"context"
	"time"
)

// Player is one tracked player.
type Player struct {
	ID           int64
	GameName     string
	TagLine      string
	Platform     string
	PUUID        string
	RankTier     string
	RankDivision string
	CreatedAt    time.Time
}

// UpsertPlayer inserts the player or refreshes the riot id and rank on
// conflict, keyed by PUUID. Returns the row id either way.
func (s *Store) UpsertPlayer(ctx context.Context, p *Player) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO players (game_name, tag_line, platform, puuid, rank_tier, rank_division)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (puuid) DO UPDATE SET
			game_name = EXCLUDED.game_name,
			tag_line = EXCLUDED.tag_line,
			platform = EXCLUDED.platform,
			rank_tier = EXCLUDED.rank_tier,
			rank_division = EXCLUDED.rank_division,
			updated_at = now()
		RETURNING id
	`, p.GameName, p.TagLine, p.Platform, p.PUUID, p.RankTier, p.RankDivision).Scan(&id)
	return id, err
}

// PlayerByRiotID fetches a player row by display name. Riot ids are not
// unique across platforms, so the platform is part of the key.
func (s *Store) PlayerByRiotID(ctx context.Context, gameName, tagLine, platform string) (*Player, error) {
	var p Player
	err := s.pool.QueryRow(ctx, `
		SELECT id, game_name, tag_line, platform, puuid, rank_tier, rank_division, created_at
		FROM players
		WHERE lower(game_name) = lower($1) AND lower(tag_line) = lower($2) AND platform = $3
	`, gameName, tagLine, platform).Scan(&p.ID, &p.GameName, &p.TagLine, &p.Platform, &p.PUUID, &p.RankTier, &p.RankDivision, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PlayerByPUUID fetches a player row.
func (s *Store) PlayerByPUUID(ctx context.Context, puuid string) (*Player, error) {
	var p Player
	err := s.pool.QueryRow(ctx, `
		SELECT id, game_name, tag_line, platform, puuid, rank_tier, rank_division, created_at
		FROM players WHERE puuid = $1
	`, puuid).Scan(&p.ID, &p.GameName, &p.TagLine, &p.Platform, &p.PUUID, &p.RankTier, &p.RankDivision, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
