package pattern

import "github.com/GepetoinTraining/lol-ai-coach/internal/config"

// Status is the lifecycle stage of a pattern.
type Status string

const (
	// StatusActive means the pattern recurred recently.
	StatusActive Status = "active"

	// StatusImproving means enough consecutive matches passed without the
	// pattern recurring to suggest the habit is fading.
	StatusImproving Status = "improving"

	// StatusBroken means the improvement streak held long enough to call
	// the habit broken. Broken patterns are kept, never deleted, so a
	// relapse is recognized as a relapse.
	StatusBroken Status = "broken"
)

// State is the persistent memory for one (player, pattern) pair. All
// transitions are pure functions so they can be tested without a store.
type State struct {
	Status            Status
	Occurrences       int
	GamesSinceLast    int
	ImprovementStreak int
	LastMatchID       string
	SampleDeathIDs    []int64
}

// Trigger folds a match where the pattern recurred. Occurrences grow by
// the number of contributing deaths and the pattern snaps back to active
// regardless of its previous status.
func (s State) Trigger(matchID string, contributing []MatchDeath, cfg config.Patterns) State {
	s.Status = StatusActive
	s.Occurrences += len(contributing)
	s.GamesSinceLast = 0
	s.ImprovementStreak = 0
	s.LastMatchID = matchID

	for _, d := range contributing {
		s.SampleDeathIDs = append(s.SampleDeathIDs, d.ID)
	}
	if limit := cfg.SampleLimit; limit > 0 && len(s.SampleDeathIDs) > limit {
		// Keep the most recent samples.
		s.SampleDeathIDs = append([]int64(nil), s.SampleDeathIDs[len(s.SampleDeathIDs)-limit:]...)
	}
	return s
}

// Miss folds a match where the pattern did not recur. The status advances
// one step at a time: active patterns become improving, improving patterns
// become broken. A single miss can never jump active straight to broken.
func (s State) Miss(cfg config.Patterns) State {
	s.GamesSinceLast++
	s.ImprovementStreak++

	switch s.Status {
	case StatusActive:
		if s.ImprovementStreak >= cfg.ImprovingStreak {
			s.Status = StatusImproving
		}
	case StatusImproving:
		if s.ImprovementStreak >= cfg.BrokenStreak {
			s.Status = StatusBroken
		}
	}
	return s
}

// Priority scores how urgent a pattern is to coach on: frequent and recent
// beats frequent and stale.
func (s State) Priority() float64 {
	return float64(s.Occurrences) / float64(s.GamesSinceLast+1)
}

// PriorityKey returns the active pattern with the highest priority score,
// or "" when no pattern is active. Ties break toward the lexically smaller
// key so the choice is deterministic.
func PriorityKey(states map[Key]State) Key {
	var best Key
	bestScore := -1.0
	for key, st := range states {
		if st.Status != StatusActive {
			continue
		}
		score := st.Priority()
		if score > bestScore || (score == bestScore && (best == "" || key < best)) {
			best, bestScore = key, score
		}
	}
	return best
}
