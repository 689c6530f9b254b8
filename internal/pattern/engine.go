package pattern

import (
	"context"
	"fmt"
	"log"
)

// Repo is the persistence the engine needs. ApplyMatch must commit the
// updates and the processed-match marker atomically; that single contract
// is what makes re-ingestion idempotent.
type Repo interface {
	MatchProcessed(ctx context.Context, playerID int64, matchID string) (bool, error)
	States(ctx context.Context, playerID int64) (map[Key]State, error)
	ApplyMatch(ctx context.Context, playerID int64, matchID string, updates []Update) error
}

// Update is one pattern's new state after folding a match.
type Update struct {
	Key         Key
	Category    string
	Description string
	State       State
}

// Engine folds matches into pattern state, one match at a time.
type Engine struct {
	repo  Repo
	cfg   Config
	kinds []Kind
}

func NewEngine(repo Repo, cfg Config) *Engine {
	return &Engine{repo: repo, cfg: cfg, kinds: Kinds()}
}

// ProcessMatch folds one match's deaths into every pattern. Matches already
// processed for this player are skipped entirely, so calling this twice
// with the same match changes nothing.
func (e *Engine) ProcessMatch(ctx context.Context, playerID int64, matchID string, deaths []MatchDeath) error {
	done, err := e.repo.MatchProcessed(ctx, playerID, matchID)
	if err != nil {
		return fmt.Errorf("checking processed set: %w", err)
	}
	if done {
		log.Printf("[Patterns] match %s already processed for player %d, skipping", matchID, playerID)
		return nil
	}

	states, err := e.repo.States(ctx, playerID)
	if err != nil {
		return fmt.Errorf("loading pattern states: %w", err)
	}

	var updates []Update
	for _, kind := range e.kinds {
		contributing := kind.Detect(deaths, e.cfg)
		state, known := states[kind.Key]

		switch {
		case len(contributing) > 0:
			state = state.Trigger(matchID, contributing, e.cfg.Patterns)
		case known:
			state = state.Miss(e.cfg.Patterns)
		default:
			// A pattern that has never fired has no state to advance.
			continue
		}

		updates = append(updates, Update{
			Key:         kind.Key,
			Category:    kind.Category,
			Description: kind.Description,
			State:       state,
		})
	}

	if err := e.repo.ApplyMatch(ctx, playerID, matchID, updates); err != nil {
		return fmt.Errorf("committing match %s: %w", matchID, err)
	}
	return nil
}
