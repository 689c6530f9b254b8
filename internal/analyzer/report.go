package analyzer

import (
	"fmt"
	"time"

	"github.com/GepetoinTraining/lol-ai-coach/internal/pattern"
	"github.com/GepetoinTraining/lol-ai-coach/internal/store"
)

// Report is the outcome of one analysis run.
type Report struct {
	RunID    string
	PlayerID int64

	GameName     string
	TagLine      string
	Platform     string
	RankTier     string
	RankDivision string

	MatchesRequested int
	MatchesAnalyzed  int
	Skipped          []SkippedMatch
	DeathsExtracted  int

	Patterns        []store.PatternRow
	PriorityPattern pattern.Key
	ReviewMoments   int
	Mission         string

	Opener   string
	Insights string

	Elapsed time.Duration
}

// PrintSummary writes a human-readable run summary to stdout.
func (r *Report) PrintSummary() {
	fmt.Println()
	fmt.Println("=== Analysis Complete ===")
	fmt.Printf("Player:           %s#%s (%s)\n", r.GameName, r.TagLine, r.Platform)
	if r.RankTier != "" {
		fmt.Printf("Rank:             %s %s\n", r.RankTier, r.RankDivision)
	}
	fmt.Printf("Matches analyzed: %d/%d\n", r.MatchesAnalyzed, r.MatchesRequested)
	if len(r.Skipped) > 0 {
		fmt.Printf("Skipped:          %d\n", len(r.Skipped))
		for _, s := range r.Skipped {
			fmt.Printf("  - %s (%s)\n", s.MatchID, s.Reason)
		}
	}
	fmt.Printf("Deaths extracted: %d\n", r.DeathsExtracted)
	fmt.Printf("Elapsed:          %s\n", formatDuration(r.Elapsed))

	if len(r.Patterns) > 0 {
		fmt.Println()
		fmt.Println("=== Patterns ===")
		for _, row := range r.Patterns {
			marker := " "
			if row.Key == r.PriorityPattern {
				marker = "*"
			}
			fmt.Printf("%s %-28s %-10s x%d (last seen %d games ago)\n",
				marker, row.Key, row.State.Status, row.State.Occurrences, row.State.GamesSinceLast)
		}
	}
	if r.Mission != "" {
		fmt.Println()
		fmt.Printf("Mission: %s\n", r.Mission)
	}
	if r.ReviewMoments > 0 {
		fmt.Printf("Queued %d deaths for VOD review\n", r.ReviewMoments)
	}
	if r.Opener != "" {
		fmt.Println()
		fmt.Println("=== Coach ===")
		fmt.Println(r.Opener)
		if r.Insights != "" {
			fmt.Println(r.Insights)
		}
	}
}

// formatDuration renders durations the way they appear in run logs.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
