package store

import (
	"context"
	"fmt"
	"log"
)

// CreateTables creates the full schema if it doesn't exist. Safe to run on
// every startup.
func (s *Store) CreateTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id BIGSERIAL PRIMARY KEY,
			game_name TEXT NOT NULL,
			tag_line TEXT NOT NULL,
			platform TEXT NOT NULL,
			puuid TEXT NOT NULL UNIQUE,
			rank_tier TEXT NOT NULL DEFAULT '',
			rank_division TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS matches (
			id BIGSERIAL PRIMARY KEY,
			match_id TEXT NOT NULL,
			player_id BIGINT NOT NULL REFERENCES players(id),
			champion TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT '',
			win BOOLEAN NOT NULL,
			kills INT NOT NULL,
			deaths INT NOT NULL,
			assists INT NOT NULL,
			cs INT NOT NULL,
			vision_score INT NOT NULL,
			game_duration_sec INT NOT NULL,
			played_at TIMESTAMPTZ NOT NULL,
			UNIQUE (match_id, player_id)
		)`,

		`CREATE TABLE IF NOT EXISTS deaths (
			id BIGSERIAL PRIMARY KEY,
			match_id TEXT NOT NULL,
			player_id BIGINT NOT NULL REFERENCES players(id),
			game_timestamp_ms INT NOT NULL,
			game_phase TEXT NOT NULL,
			position_x INT NOT NULL,
			position_y INT NOT NULL,
			map_zone TEXT NOT NULL,
			player_champion TEXT NOT NULL,
			killer_participant_id INT NOT NULL,
			killer_champion TEXT NOT NULL DEFAULT '',
			assisting_champions JSONB NOT NULL DEFAULT '[]',
			had_ward_nearby BOOLEAN NOT NULL,
			overextended BOOLEAN NOT NULL,
			gold_diff INT NOT NULL,
			cs_diff INT NOT NULL,
			level_diff INT NOT NULL,
			player_gold INT NOT NULL,
			player_level INT NOT NULL,
			death_type TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS patterns (
			id BIGSERIAL PRIMARY KEY,
			player_id BIGINT NOT NULL REFERENCES players(id),
			pattern_key TEXT NOT NULL,
			pattern_category TEXT NOT NULL,
			description TEXT NOT NULL,
			occurrences INT NOT NULL DEFAULT 0,
			games_since_last INT NOT NULL DEFAULT 0,
			improvement_streak INT NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			last_match_id TEXT NOT NULL DEFAULT '',
			last_seen_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			sample_death_ids JSONB NOT NULL DEFAULT '[]',
			UNIQUE (player_id, pattern_key)
		)`,

		`CREATE TABLE IF NOT EXISTS processed_matches (
			player_id BIGINT NOT NULL REFERENCES players(id),
			match_id TEXT NOT NULL,
			processed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (player_id, match_id)
		)`,

		`CREATE TABLE IF NOT EXISTS missions (
			id BIGSERIAL PRIMARY KEY,
			player_id BIGINT NOT NULL REFERENCES players(id),
			pattern_id BIGINT REFERENCES patterns(id),
			description TEXT NOT NULL,
			focus_area TEXT NOT NULL,
			success_criteria TEXT NOT NULL DEFAULT '',
			tips JSONB NOT NULL DEFAULT '[]',
			status TEXT NOT NULL DEFAULT 'active',
			result_notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			resolved_at TIMESTAMPTZ
		)`,

		`CREATE TABLE IF NOT EXISTS vod_moments (
			id BIGSERIAL PRIMARY KEY,
			player_id BIGINT NOT NULL REFERENCES players(id),
			death_id BIGINT NOT NULL REFERENCES deaths(id),
			pattern_id BIGINT REFERENCES patterns(id),
			coach_question TEXT NOT NULL,
			reviewed BOOLEAN NOT NULL DEFAULT false,
			player_response TEXT NOT NULL DEFAULT '',
			coach_insight TEXT NOT NULL DEFAULT '',
			had_breakthrough BOOLEAN NOT NULL DEFAULT false,
			breakthrough_insight TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			reviewed_at TIMESTAMPTZ
		)`,

		`CREATE TABLE IF NOT EXISTS coaching_sessions (
			id BIGSERIAL PRIMARY KEY,
			player_id BIGINT NOT NULL REFERENCES players(id),
			run_id TEXT NOT NULL,
			focus_area TEXT NOT NULL DEFAULT '',
			matches_analyzed INT NOT NULL DEFAULT 0,
			patterns_discussed JSONB NOT NULL DEFAULT '[]',
			insights TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_matches_player ON matches(player_id, played_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_deaths_match ON deaths(match_id, player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_deaths_player_ts ON deaths(player_id, game_timestamp_ms)`,
		`CREATE INDEX IF NOT EXISTS idx_patterns_status ON patterns(player_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_missions_active ON missions(player_id) WHERE status = 'active'`,
		`CREATE INDEX IF NOT EXISTS idx_vod_unreviewed ON vod_moments(player_id) WHERE NOT reviewed`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	log.Println("[Store] schema ready")
	return nil
}
