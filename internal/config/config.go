// Package config loads runtime configuration from the environment. Every
// heuristic threshold used by the analysis and pattern packages lives here
// so tuning never requires a code change.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration for an analyzer run.
type Config struct {
	// Riot API
	RiotAPIKey       string
	RatePerSecond    int
	RatePer2Min      int
	RateWaitCeiling  time.Duration
	RequestTimeout   time.Duration
	MaxRetries429    int
	MaxRetries5xx    int

	// Storage
	DatabaseURL string
	CachePath   string

	// Downstream coaching text generator. Empty disables the client.
	CoachServiceURL string

	// Pipeline
	FetchWorkers int
	DefaultQueue int

	Analysis Analysis
	Patterns Patterns
}

// Analysis holds the death-extraction and classification thresholds.
type Analysis struct {
	// Ward coverage: a ward placed by the player within this radius and
	// lookback window counts as vision at the death position.
	WardRadius   float64
	WardLookback time.Duration

	// Classifier thresholds.
	TowerRadius          float64 // distance to a standing enemy turret
	TeamfightEnemies     int     // killer+assists at or above this is a teamfight
	OverextendDistance   float64 // past river line into enemy territory
	AheadGoldDiff        int     // gold lead that makes a death "while ahead"
	AheadCSDiff          int
	EarlyDeathWindow     time.Duration // clustering window for repeated early deaths
	EarlyDeathMinCluster int
}

// Patterns holds the pattern state machine tuning.
type Patterns struct {
	ImprovingStreak int // match misses before active becomes improving
	BrokenStreak    int // match misses before improving becomes broken
	SampleLimit     int // death ids retained per pattern
	SameChampMin    int // deaths to one champion before dies_to_same_champ fires
}

// Load reads configuration from the environment, probing the usual .env
// locations first. RIOT_API_KEY is the only hard requirement.
func Load() (*Config, error) {
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			fmt.Printf("Loaded .env from: %s\n", path)
			break
		}
	}

	apiKey := os.Getenv("RIOT_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RIOT_API_KEY environment variable not set")
	}
	if !strings.HasPrefix(apiKey, "RGAPI-") {
		return nil, fmt.Errorf("RIOT_API_KEY does not look like a Riot key (expected RGAPI- prefix)")
	}

	cfg := &Config{
		RiotAPIKey:      apiKey,
		RatePerSecond:   envInt("RIOT_RATE_PER_SECOND", 20),
		RatePer2Min:     envInt("RIOT_RATE_PER_2MIN", 100),
		RateWaitCeiling: envDuration("RIOT_RATE_WAIT_CEILING", 2*time.Minute),
		RequestTimeout:  envDuration("RIOT_REQUEST_TIMEOUT", 30*time.Second),
		MaxRetries429:   envInt("RIOT_MAX_RETRIES", 3),
		MaxRetries5xx:   envInt("RIOT_MAX_RETRIES_5XX", 2),

		DatabaseURL:     os.Getenv("DATABASE_URL"),
		CachePath:       envString("MATCH_CACHE_PATH", "matches.db"),
		CoachServiceURL: os.Getenv("COACH_SERVICE_URL"),

		FetchWorkers: envInt("FETCH_WORKERS", 3),
		DefaultQueue: envInt("DEFAULT_QUEUE", 420),

		Analysis: Analysis{
			WardRadius:           envFloat("WARD_RADIUS", 1500),
			WardLookback:         envDuration("WARD_LOOKBACK", 30*time.Second),
			TowerRadius:          envFloat("TOWER_RADIUS", 1000),
			TeamfightEnemies:     envInt("TEAMFIGHT_ENEMIES", 3),
			OverextendDistance:   envFloat("OVEREXTEND_DISTANCE", 1200),
			AheadGoldDiff:        envInt("AHEAD_GOLD_DIFF", 500),
			AheadCSDiff:          envInt("AHEAD_CS_DIFF", 15),
			EarlyDeathWindow:     envDuration("EARLY_DEATH_WINDOW", 2*time.Minute),
			EarlyDeathMinCluster: envInt("EARLY_DEATH_MIN_CLUSTER", 2),
		},

		Patterns: Patterns{
			ImprovingStreak: envInt("PATTERN_IMPROVING_STREAK", 3),
			BrokenStreak:    envInt("PATTERN_BROKEN_STREAK", 5),
			SampleLimit:     envInt("PATTERN_SAMPLE_LIMIT", 10),
			SameChampMin:    envInt("PATTERN_SAME_CHAMP_MIN", 3),
		},
	}

	if cfg.Patterns.BrokenStreak <= cfg.Patterns.ImprovingStreak {
		return nil, fmt.Errorf("PATTERN_BROKEN_STREAK (%d) must exceed PATTERN_IMPROVING_STREAK (%d)",
			cfg.Patterns.BrokenStreak, cfg.Patterns.ImprovingStreak)
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fmt.Printf("Warning: %s=%q is not an integer, using %d\n", key, v, fallback)
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		fmt.Printf("Warning: %s=%q is not a number, using %g\n", key, v, fallback)
		return fallback
	}
	return f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	// Accept both bare seconds ("30") and Go durations ("30s").
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		fmt.Printf("Warning: %s=%q is not a duration, using %s\n", key, v, fallback)
		return fallback
	}
	return d
}
