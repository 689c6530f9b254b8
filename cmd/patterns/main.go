package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/GepetoinTraining/lol-ai-coach/internal/analyzer"
	"github.com/GepetoinTraining/lol-ai-coach/internal/config"
	"github.com/GepetoinTraining/lol-ai-coach/internal/pattern"
	"github.com/GepetoinTraining/lol-ai-coach/internal/store"
)

// patterns is a read-only view into a player's pattern memory: what the
// analyzer has learned, which habits are fading, and what is queued for
// review.
func main() {
	riotID := flag.String("riot-id", "", "Riot ID to inspect (e.g., 'Player#BR1')")
	platform := flag.String("platform", "br1", "Platform the player plays on")
	showBroken := flag.Bool("all", false, "Include broken (fixed) patterns")
	flag.Parse()

	if *riotID == "" {
		fmt.Println("Usage:")
		fmt.Println("  patterns --riot-id='Player#BR1' [--platform=br1] [--all]")
		fmt.Println()
		fmt.Println("Shows the pattern memory the analyzer has built for a player.")
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

	ctx := context.Background()
	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer st.Close()

	player, err := st.PlayerByRiotID(ctx, gameName, tagLine, *platform)
	if err != nil {
		log.Fatalf("Player %s#%s not found on %s. Run the analyzer first.", gameName, tagLine, *platform)
	}

	rows, err := st.Patterns(ctx, player.ID)
	if err != nil {
		log.Fatalf("Failed to load patterns: %v", err)
	}

	fmt.Printf("=== %s#%s (%s)", player.GameName, player.TagLine, player.Platform)
	if player.RankTier != "" {
		fmt.Printf(" %s %s", player.RankTier, player.RankDivision)
	}
	fmt.Println(" ===")

	if len(rows) == 0 {
		fmt.Println("No patterns yet.")
		return
	}

	fmt.Println()
	for _, row := range rows {
		if row.State.Status == pattern.StatusBroken && !*showBroken {
			continue
		}
		fmt.Printf("%-28s %-10s x%-3d priority %.2f\n", row.Key, row.State.Status, row.State.Occurrences, row.State.Priority())
		fmt.Printf("  %s\n", row.Description)
		fmt.Printf("  last seen %d games ago, improvement streak %d (last match %s)\n",
			row.State.GamesSinceLast, row.State.ImprovementStreak, row.State.LastMatchID)
	}

	// Rows come back priority-first, so the first one still shown is the
	// habit most worth reviewing. Show the deaths that built it.
	for _, top := range rows {
		if top.State.Status == pattern.StatusBroken && !*showBroken {
			continue
		}
		samples, err := st.DeathsByIDs(ctx, top.State.SampleDeathIDs)
		if err != nil {
			log.Fatalf("Failed to load sample deaths: %v", err)
		}
		if len(samples) > 0 {
			fmt.Println()
			fmt.Printf("=== Evidence for %s ===\n", top.Key)
			for _, d := range samples {
				fmt.Printf("- %s at %s in %s: killed by %s (%s)\n",
					d.MatchID, gameClock(d.TimestampMS), d.Zone, d.KillerChampion, d.Type)
			}
		}
		break
	}

	missions, err := st.ActiveMissions(ctx, player.ID)
	if err != nil {
		log.Fatalf("Failed to load missions: %v", err)
	}
	if len(missions) > 0 {
		fmt.Println()
		fmt.Println("=== Active Missions ===")
		for _, m := range missions {
			fmt.Printf("- %s\n  success: %s\n", m.Description, m.SuccessCriteria)
		}
	}

	moments, err := st.UnreviewedVODMoments(ctx, player.ID)
	if err != nil {
		log.Fatalf("Failed to load review queue: %v", err)
	}
	if len(moments) > 0 {
		fmt.Println()
		fmt.Printf("=== VOD Review Queue (%d) ===\n", len(moments))
		for _, v := range moments {
			fmt.Printf("- death %d: %s\n", v.DeathID, v.CoachQuestion)
		}
	}

	if last, err := st.LastSession(ctx, player.ID); err == nil && last != nil {
		fmt.Println()
		fmt.Printf("Last analyzed %s (%d matches, focus: %s)\n",
			last.CreatedAt.Format(time.RFC822), last.MatchesAnalyzed, last.FocusArea)
	}
}

func gameClock(ms int) string {
	return fmt.Sprintf("%d:%02d", ms/60000, ms%60000/1000)
}
