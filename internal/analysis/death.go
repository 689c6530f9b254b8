package analysis

// DeathType is the classifier's verdict on how a death happened.
type DeathType string

const (
	DeathTowerDive DeathType = "tower_dive" // killed under a standing enemy turret
	DeathTeamfight DeathType = "teamfight"  // three or more enemies involved
	DeathGank      DeathType = "gank"       // enemy jungler collapsed on a lane
	DeathSoloKill  DeathType = "solo_kill"  // lost a 1v1 in lane
	DeathCaught    DeathType = "caught"     // overextended without vision
	DeathUnknown   DeathType = "unknown"
)

// Death is one death of the tracked player, enriched with everything the
// pattern engine needs. Extraction is deterministic: the same match and
// timeline always produce the same ordered slice of these.
type Death struct {
	MatchID     string
	TimestampMS int
	Phase       GamePhase

	PositionX int
	PositionY int
	Zone      MapZone

	PlayerChampion      string
	KillerParticipantID int
	KillerChampion      string
	AssistingChampions  []string

	HadWardNearby bool
	Overextended  bool

	// Standing vs the lane opponent at the last frame before the death.
	// Zero when no lane opponent could be identified.
	GoldDiff  int
	CSDiff    int
	LevelDiff int

	PlayerGold  int
	PlayerLevel int

	Type DeathType
}

// EnemiesInvolved counts the killer plus assisting enemies.
func (d Death) EnemiesInvolved() int {
	n := len(d.AssistingChampions)
	if d.KillerParticipantID > 0 {
		n++
	}
	return n
}

// WasAhead reports whether the player was meaningfully ahead of the lane
// opponent when they died, per the given thresholds.
func (d Death) WasAhead(goldDiff, csDiff int) bool {
	return d.GoldDiff > goldDiff || d.CSDiff > csDiff
}
