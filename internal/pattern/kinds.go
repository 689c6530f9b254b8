// Package pattern maintains the long-term memory of recurring death
// patterns per player, folding each new match into per-pattern state.
package pattern

import (
	"sort"

	"github.com/GepetoinTraining/lol-ai-coach/internal/analysis"
	"github.com/GepetoinTraining/lol-ai-coach/internal/config"
)

// Key identifies one kind of recurring mistake.
type Key string

const (
	KeyRiverDeathNoWard      Key = "river_death_no_ward"
	KeyDiesWhenAhead         Key = "dies_when_ahead"
	KeyEarlyDeathRepeat      Key = "early_death_repeat"
	KeyCaughtSidelane        Key = "caught_sidelane"
	KeyTowerDiveDeath        Key = "tower_dive_death"
	KeyTeamfightPositioning  Key = "teamfight_positioning"
	KeyObjectiveDeath        Key = "objective_death"
	KeyOverextendNoVision    Key = "overextend_no_vision"
	KeyDiesToSameChamp       Key = "dies_to_same_champ"
)

// MatchDeath pairs a stored death row with its extracted context, so
// pattern samples can reference the persisted record.
type MatchDeath struct {
	ID int64
	analysis.Death
}

// Kind couples a pattern key with the predicate that finds its
// contributing deaths in one match.
type Kind struct {
	Key         Key
	Category    string
	Description string
	Detect      func(deaths []MatchDeath, cfg Config) []MatchDeath
}

// Config bundles the thresholds the detectors need.
type Config struct {
	Analysis config.Analysis
	Patterns config.Patterns
}

// Kinds returns every pattern kind in a fixed evaluation order.
func Kinds() []Kind {
	return []Kind{
		{
			Key:         KeyRiverDeathNoWard,
			Category:    "vision",
			Description: "Dies in the river without ward coverage",
			Detect: func(deaths []MatchDeath, cfg Config) []MatchDeath {
				return filter(deaths, func(d MatchDeath) bool {
					return d.Zone.IsRiver() && !d.HadWardNearby
				})
			},
		},
		{
			Key:         KeyDiesWhenAhead,
			Category:    "discipline",
			Description: "Throws leads by dying while ahead of the lane opponent",
			Detect: func(deaths []MatchDeath, cfg Config) []MatchDeath {
				return filter(deaths, func(d MatchDeath) bool {
					return d.WasAhead(cfg.Analysis.AheadGoldDiff, cfg.Analysis.AheadCSDiff)
				})
			},
		},
		{
			Key:         KeyEarlyDeathRepeat,
			Category:    "laning",
			Description: "Dies repeatedly in quick succession before 10 minutes",
			Detect:      detectEarlyDeathRepeat,
		},
		{
			Key:         KeyCaughtSidelane,
			Category:    "positioning",
			Description: "Gets collapsed on in a side lane without vision after laning phase",
			Detect: func(deaths []MatchDeath, cfg Config) []MatchDeath {
				return filter(deaths, func(d MatchDeath) bool {
					return d.Zone.IsSideLane() && d.Phase != analysis.PhaseEarly &&
						!d.HadWardNearby && d.EnemiesInvolved() >= 2
				})
			},
		},
		{
			Key:         KeyTowerDiveDeath,
			Category:    "aggression",
			Description: "Dies diving or getting dived under turrets",
			Detect: func(deaths []MatchDeath, cfg Config) []MatchDeath {
				return filter(deaths, func(d MatchDeath) bool {
					return d.Type == analysis.DeathTowerDive
				})
			},
		},
		{
			Key:         KeyTeamfightPositioning,
			Category:    "positioning",
			Description: "Dies more than once per game in teamfights",
			Detect: func(deaths []MatchDeath, cfg Config) []MatchDeath {
				tf := filter(deaths, func(d MatchDeath) bool {
					return d.Type == analysis.DeathTeamfight
				})
				if len(tf) < 2 {
					return nil
				}
				return tf
			},
		},
		{
			Key:         KeyObjectiveDeath,
			Category:    "positioning",
			Description: "Dies around river objectives after laning phase",
			Detect: func(deaths []MatchDeath, cfg Config) []MatchDeath {
				return filter(deaths, func(d MatchDeath) bool {
					return d.Zone.IsRiver() && d.Phase != analysis.PhaseEarly
				})
			},
		},
		{
			Key:         KeyOverextendNoVision,
			Category:    "vision",
			Description: "Pushes past the river without vision and pays for it",
			Detect: func(deaths []MatchDeath, cfg Config) []MatchDeath {
				return filter(deaths, func(d MatchDeath) bool {
					return d.Overextended && !d.HadWardNearby
				})
			},
		},
		{
			Key:         KeyDiesToSameChamp,
			Category:    "matchup",
			Description: "Keeps dying to the same enemy champion",
			Detect: func(deaths []MatchDeath, cfg Config) []MatchDeath {
				byChamp := make(map[string][]MatchDeath)
				for _, d := range deaths {
					if d.KillerChampion != "" {
						byChamp[d.KillerChampion] = append(byChamp[d.KillerChampion], d)
					}
				}
				champs := make([]string, 0, len(byChamp))
				for c := range byChamp {
					champs = append(champs, c)
				}
				sort.Strings(champs)

				var out []MatchDeath
				for _, c := range champs {
					if len(byChamp[c]) >= cfg.Patterns.SameChampMin {
						out = append(out, byChamp[c]...)
					}
				}
				return out
			},
		},
	}
}

func filter(deaths []MatchDeath, keep func(MatchDeath) bool) []MatchDeath {
	var out []MatchDeath
	for _, d := range deaths {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// detectEarlyDeathRepeat finds clusters of early-game deaths close enough in
// time to indicate the player walked back into the same losing situation.
func detectEarlyDeathRepeat(deaths []MatchDeath, cfg Config) []MatchDeath {
	early := filter(deaths, func(d MatchDeath) bool {
		return d.Phase == analysis.PhaseEarly
	})
	if len(early) < cfg.Analysis.EarlyDeathMinCluster {
		return nil
	}

	windowMS := int(cfg.Analysis.EarlyDeathWindow.Milliseconds())
	contributing := make(map[int64]MatchDeath)
	for i := 0; i < len(early); i++ {
		cluster := []MatchDeath{early[i]}
		for j := i + 1; j < len(early); j++ {
			if early[j].TimestampMS-early[i].TimestampMS <= windowMS {
				cluster = append(cluster, early[j])
			}
		}
		if len(cluster) >= cfg.Analysis.EarlyDeathMinCluster {
			for _, d := range cluster {
				contributing[d.ID] = d
			}
		}
	}
	if len(contributing) == 0 {
		return nil
	}

	out := make([]MatchDeath, 0, len(contributing))
	for _, d := range contributing {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimestampMS < out[j].TimestampMS })
	return out
}
