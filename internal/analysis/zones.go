// Package analysis turns raw match timelines into classified death contexts.
package analysis

import (
	"math"
	"time"

	"github.com/GepetoinTraining/lol-ai-coach/internal/riot"
)

// Summoner's Rift spans roughly 0..15000 on both axes. The blue fountain
// sits near the origin, the red fountain near (15000, 15000). The river
// runs along the anti-diagonal x+y = 15000, mid lane along the main
// diagonal y = x.
const (
	mapSize = 15000

	// Half-width of the river band around the anti-diagonal.
	riverBand = 2000

	// Half-width of the mid lane corridor around the main diagonal.
	midLaneBand = 1800

	// Side lanes hug the map edges.
	laneEdge = 4300

	// Fountain corners.
	baseRadius = 3000
)

// GamePhase buckets the in-game clock.
type GamePhase string

const (
	PhaseEarly GamePhase = "early" // before 10 minutes
	PhaseMid   GamePhase = "mid"   // 10 to 20 minutes
	PhaseLate  GamePhase = "late"  // 20 minutes on
)

// PhaseAt returns the game phase for a timestamp in milliseconds.
func PhaseAt(timestampMS int) GamePhase {
	switch {
	case timestampMS < int(10*time.Minute/time.Millisecond):
		return PhaseEarly
	case timestampMS < int(20*time.Minute/time.Millisecond):
		return PhaseMid
	default:
		return PhaseLate
	}
}

// MapZone is a coarse region of Summoner's Rift.
type MapZone string

const (
	ZoneTopLane     MapZone = "top_lane"
	ZoneMidLane     MapZone = "mid_lane"
	ZoneBotLane     MapZone = "bot_lane"
	ZoneRiverTop    MapZone = "river_top"    // baron side
	ZoneRiverBottom MapZone = "river_bottom" // dragon side
	ZoneBlueJungle  MapZone = "blue_jungle"
	ZoneRedJungle   MapZone = "red_jungle"
	ZoneBlueBase    MapZone = "blue_base"
	ZoneRedBase     MapZone = "red_base"
)

// IsRiver reports whether the zone is either river half.
func (z MapZone) IsRiver() bool {
	return z == ZoneRiverTop || z == ZoneRiverBottom
}

// IsSideLane reports whether the zone is top or bot lane.
func (z MapZone) IsSideLane() bool {
	return z == ZoneTopLane || z == ZoneBotLane
}

// ZoneAt maps a coordinate to its zone. Checks run from most to least
// specific: bases, side lanes, mid, river, then jungle quadrants.
func ZoneAt(pos riot.Position) MapZone {
	x, y := float64(pos.X), float64(pos.Y)

	if math.Hypot(x, y) < baseRadius {
		return ZoneBlueBase
	}
	if math.Hypot(mapSize-x, mapSize-y) < baseRadius {
		return ZoneRedBase
	}

	// Top lane runs along the left and top edges, bot lane along the
	// bottom and right edges.
	if (x < laneEdge && y > mapSize-laneEdge) || (x < laneEdge && y > x+mapSize/2) || (y > mapSize-laneEdge && x < y-mapSize/2) {
		return ZoneTopLane
	}
	if (x > mapSize-laneEdge && y < laneEdge) || (y < laneEdge && x > y+mapSize/2) || (x > mapSize-laneEdge && y < x-mapSize/2) {
		return ZoneBotLane
	}

	if math.Abs(x-y) < midLaneBand {
		return ZoneMidLane
	}

	if math.Abs(x+y-mapSize) < riverBand {
		if y > x {
			return ZoneRiverTop
		}
		return ZoneRiverBottom
	}

	if x+y < mapSize {
		return ZoneBlueJungle
	}
	return ZoneRedJungle
}

// distance returns the straight-line distance between two positions.
func distance(a, b riot.Position) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// riverOverstep measures how far past the river line a position sits from
// the given team's side. Positive means enemy territory.
func riverOverstep(pos riot.Position, teamID int) float64 {
	diag := float64(pos.X+pos.Y) - mapSize
	if teamID == riot.TeamBlue {
		return diag / math.Sqrt2
	}
	return -diag / math.Sqrt2
}
