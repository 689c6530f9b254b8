package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/GepetoinTraining/lol-ai-coach/internal/analyzer"
	"github.com/GepetoinTraining/lol-ai-coach/internal/cache"
	"github.com/GepetoinTraining/lol-ai-coach/internal/coach"
	"github.com/GepetoinTraining/lol-ai-coach/internal/config"
	"github.com/GepetoinTraining/lol-ai-coach/internal/riot"
	"github.com/GepetoinTraining/lol-ai-coach/internal/store"
)

func main() {
	riotID := flag.String("riot-id", "", "Riot ID to analyze (e.g., 'Player#BR1')")
	platform := flag.String("platform", "br1", "Platform the player plays on (na1, euw1, kr, ...)")
	matchCount := flag.Int("count", 20, "Number of recent matches to analyze")
	queue := flag.Int("queue", 0, "Queue id filter (default ranked solo)")
	intent := flag.String("intent", "", "What the player wants to work on (laning, macro, dying_less, ...)")
	noTimeline := flag.Bool("no-timeline", false, "Skip timelines, store match stats only")
	flag.Parse()

	if *riotID == "" {
		fmt.Println("Usage:")
		fmt.Println("  analyzer --riot-id='Player#BR1' [--platform=br1] [--count=20] [--intent=dying_less]")
		fmt.Println()
		fmt.Println("Fetches the player's recent matches, extracts every death from the")
		fmt.Println("timelines, classifies them, and updates the player's pattern memory.")
		fmt.Println()
		fmt.Println("RIOT_API_KEY must be set in the environment or a .env file.")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	gameName, tagLine, err := analyzer.ParseRiotID(*riotID)
	if err != nil {
		log.Fatalf("Invalid riot id: %v", err)
	}

	ctx := analyzer.SetupSignalHandler(nil)

	limiter := riot.NewLimiter(cfg.RatePerSecond, cfg.RatePer2Min, cfg.RateWaitCeiling)
	client, err := riot.NewClient(cfg.RiotAPIKey, *platform, limiter,
		riot.WithTimeout(cfg.RequestTimeout),
		riot.WithRetries(cfg.MaxRetries429, cfg.MaxRetries5xx))
	if err != nil {
		log.Fatalf("Failed to create Riot client: %v", err)
	}

	if err := client.ValidateKey(ctx); err != nil {
		if errors.Is(err, riot.ErrInvalidCredentials) {
			log.Fatal("RIOT_API_KEY is expired or invalid. Get a fresh key at https://developer.riotgames.com")
		}
		log.Fatalf("Key validation failed: %v", err)
	}

	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer st.Close()

	if err := st.CreateTables(ctx); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	opts := []analyzer.Option{}
	matchCache, err := cache.Open(cfg.CachePath)
	if err != nil {
		log.Printf("Match cache unavailable, fetching everything from the API: %v", err)
	} else {
		defer matchCache.Close()
		opts = append(opts, analyzer.WithCache(matchCache))
	}
	if cfg.CoachServiceURL != "" {
		opts = append(opts, analyzer.WithCoach(coach.NewClient(cfg.CoachServiceURL)))
	}

	pipeline := analyzer.New(client, st, cfg, opts...)

	report, err := pipeline.Run(ctx, analyzer.Request{
		GameName:     gameName,
		TagLine:      tagLine,
		Platform:     *platform,
		MatchCount:   *matchCount,
		Queue:        *queue,
		Intent:       *intent,
		WithTimeline: !*noTimeline,
	})
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	report.PrintSummary()
}
