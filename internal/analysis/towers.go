package analysis

import "github.com/GepetoinTraining/lol-ai-coach/internal/riot"

// Static turret positions on Summoner's Rift, keyed by owning team.
// BUILDING_KILL events carry the position of the destroyed building, which
// is how fallen turrets are matched and removed during a replay walk.
var turretPositions = map[int][]riot.Position{
	riot.TeamBlue: {
		{X: 981, Y: 10441},  // top outer
		{X: 1512, Y: 6699},  // top inner
		{X: 1169, Y: 4287},  // top inhibitor
		{X: 5846, Y: 6396},  // mid outer
		{X: 5048, Y: 4812},  // mid inner
		{X: 3651, Y: 3696},  // mid inhibitor
		{X: 10504, Y: 1029}, // bot outer
		{X: 6919, Y: 1483},  // bot inner
		{X: 4281, Y: 1253},  // bot inhibitor
		{X: 2177, Y: 1807},  // nexus
		{X: 1748, Y: 2270},  // nexus
	},
	riot.TeamRed: {
		{X: 4318, Y: 13875},  // top outer
		{X: 7943, Y: 13411},  // top inner
		{X: 10481, Y: 13650}, // top inhibitor
		{X: 8955, Y: 8510},   // mid outer
		{X: 9767, Y: 10113},  // mid inner
		{X: 11134, Y: 11207}, // mid inhibitor
		{X: 13866, Y: 4505},  // bot outer
		{X: 13327, Y: 8226},  // bot inner
		{X: 13624, Y: 10572}, // bot inhibitor
		{X: 12611, Y: 13084}, // nexus
		{X: 13052, Y: 12612}, // nexus
	},
}

// turretTracker keeps the set of standing turrets while walking a timeline.
type turretTracker struct {
	standing map[int][]riot.Position
}

func newTurretTracker() *turretTracker {
	t := &turretTracker{standing: make(map[int][]riot.Position, 2)}
	for team, positions := range turretPositions {
		t.standing[team] = append([]riot.Position(nil), positions...)
	}
	return t
}

// destroy removes the turret closest to the event position. BUILDING_KILL
// events report TeamID as the owner of the destroyed building.
func (t *turretTracker) destroy(ev riot.TimelineEvent) {
	if ev.BuildingType != "TOWER_BUILDING" {
		return
	}
	turrets := t.standing[ev.TeamID]
	if len(turrets) == 0 {
		return
	}
	closest, best := 0, distance(turrets[0], ev.Position)
	for i := 1; i < len(turrets); i++ {
		if d := distance(turrets[i], ev.Position); d < best {
			closest, best = i, d
		}
	}
	t.standing[ev.TeamID] = append(turrets[:closest], turrets[closest+1:]...)
}

// nearStanding reports whether pos is within radius of any standing turret
// owned by team.
func (t *turretTracker) nearStanding(pos riot.Position, team int, radius float64) bool {
	for _, turret := range t.standing[team] {
		if distance(pos, turret) <= radius {
			return true
		}
	}
	return false
}
