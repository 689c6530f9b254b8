package analysis

import "github.com/GepetoinTraining/lol-ai-coach/internal/config"

// Signals are facts about a kill that only the timeline walk can compute,
// handed to the classifier alongside the death itself.
type Signals struct {
	NearEnemyTower  bool
	JunglerInvolved bool
}

// Classifier assigns a DeathType by running an ordered rule list. The first
// matching rule wins, so precedence is the slice order: a death under a
// turret with five enemies present is a tower dive, not a teamfight.
type Classifier struct {
	cfg   config.Analysis
	rules []rule
}

type rule struct {
	verdict DeathType
	matches func(d Death, s Signals, cfg config.Analysis) bool
}

func NewClassifier(cfg config.Analysis) *Classifier {
	return &Classifier{
		cfg: cfg,
		rules: []rule{
			{DeathTowerDive, func(d Death, s Signals, cfg config.Analysis) bool {
				return s.NearEnemyTower
			}},
			{DeathTeamfight, func(d Death, s Signals, cfg config.Analysis) bool {
				return d.EnemiesInvolved() >= cfg.TeamfightEnemies
			}},
			// A gank needs a second enemy in on the kill. A jungler who
			// wins a straight 1v1 is a solo kill, not a gank.
			{DeathGank, func(d Death, s Signals, cfg config.Analysis) bool {
				return s.JunglerInvolved && d.EnemiesInvolved() >= 2 &&
					(d.Zone.IsSideLane() || d.Zone == ZoneMidLane || d.Zone.IsRiver())
			}},
			{DeathSoloKill, func(d Death, s Signals, cfg config.Analysis) bool {
				return d.EnemiesInvolved() == 1 && (d.Zone.IsSideLane() || d.Zone == ZoneMidLane)
			}},
			{DeathCaught, func(d Death, s Signals, cfg config.Analysis) bool {
				return !d.HadWardNearby && d.Overextended
			}},
		},
	}
}

// Classify returns the first matching verdict, or DeathUnknown when no rule
// fires. Ambiguity is absorbed here, never surfaced as an error.
func (c *Classifier) Classify(d Death, s Signals) DeathType {
	for _, r := range c.rules {
		if r.matches(d, s, c.cfg) {
			return r.verdict
		}
	}
	return DeathUnknown
}
