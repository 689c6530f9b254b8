package coach

import (
	"fmt"
	"sort"

	"github.com/GepetoinTraining/lol-ai-coach/internal/store"
)

// SelectReviewDeaths picks the deaths most worth re-watching: deaths the
// priority pattern sampled first, padded with the most recent others, up to
// limit. Pure function; ordering is deterministic.
func SelectReviewDeaths(deaths []store.StoredDeath, sampleIDs []int64, limit int) []store.StoredDeath {
	if limit <= 0 {
		return nil
	}

	sampled := make(map[int64]bool, len(sampleIDs))
	for _, id := range sampleIDs {
		sampled[id] = true
	}

	ordered := append([]store.StoredDeath(nil), deaths...)
	sort.SliceStable(ordered, func(i, j int) bool {
		si, sj := sampled[ordered[i].ID], sampled[ordered[j].ID]
		if si != sj {
			return si
		}
		return ordered[i].ID > ordered[j].ID // newer rows first
	})

	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return ordered
}

// ReviewQuestion phrases the reflection prompt for one death. The question
// names the situation, not the mistake; the player supplies the analysis.
func ReviewQuestion(d store.StoredDeath) string {
	minutes := d.TimestampMS / 60000
	seconds := (d.TimestampMS / 1000) % 60
	return fmt.Sprintf("At %d:%02d you died in %s to %s. What did you know about the enemy positions at that moment, and what would you check first on a rewatch?",
		minutes, seconds, d.Zone, d.KillerChampion)
}

// MissionFor drafts a mission targeting a pattern. The success criteria
// are phrased against the pattern's own counters so completion is
// checkable from data.
func MissionFor(playerID int64, row store.PatternRow) *store.Mission {
	patternID := row.ID
	return &store.Mission{
		PlayerID:        playerID,
		PatternID:       &patternID,
		FocusArea:       row.Category,
		Description:     fmt.Sprintf("Next 3 games: %s", missionGoal(row)),
		SuccessCriteria: fmt.Sprintf("No new %s occurrences across the next 3 analyzed games", row.Key),
		Tips:            missionTips(row),
	}
}

func missionGoal(row store.PatternRow) string {
	switch row.Category {
	case "vision":
		return "place a ward before crossing the river, every time, and back off when it expires"
	case "positioning":
		return "stay on the same side of the map as your team after 20 minutes unless you can see all five enemies"
	case "laning":
		return "after your first death, play for CS only until your next back"
	case "discipline":
		return "when ahead, recall on the first wave you cannot safely contest"
	case "aggression":
		return "only dive when the wave is yours and you know the enemy cooldowns"
	default:
		return "before every death-prone moment, say out loud what you know about the enemy jungler"
	}
}

func missionTips(row store.PatternRow) []string {
	return []string{
		fmt.Sprintf("This has happened %d times so far; the goal is a clean streak, not perfection", row.State.Occurrences),
		"Re-watch one sampled death before your first game",
	}
}
