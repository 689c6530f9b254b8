// Package analyzer orchestrates a full player analysis run: resolve the
// player, fetch matches, extract and classify deaths, fold patterns, and
// surface coaching material.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/GepetoinTraining/lol-ai-coach/internal/riot"
)

// Request describes one analysis run.
type Request struct {
	GameName     string `validate:"required,min=3,max=16"`
	TagLine      string `validate:"required,min=2,max=5"`
	Platform     string `validate:"required"`
	MatchCount   int    `validate:"required,min=1,max=100"`
	Queue        int    `validate:"min=0"`
	Intent       string
	WithTimeline bool
}

var validate = validator.New()

// Validate checks field constraints and platform routability.
func (r *Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	if !riot.IsValidPlatform(r.Platform) {
		return fmt.Errorf("invalid request: %w: %q", riot.ErrInvalidRegion, r.Platform)
	}
	return nil
}

// ParseRiotID splits "GameName#TAG" on the last #, since game names may
// themselves contain one.
func ParseRiotID(riotID string) (gameName, tagLine string, err error) {
	idx := strings.LastIndex(riotID, "#")
	if idx <= 0 || idx == len(riotID)-1 {
		return "", "", fmt.Errorf("riot id must look like 'GameName#TAG', got %q", riotID)
	}
	return riotID[:idx], riotID[idx+1:], nil
}
