package analysis

import (
	"testing"

	"github.com/GepetoinTraining/lol-ai-coach/internal/riot"
)

func TestPhaseAt(t *testing.T) {
	tests := []struct {
		ms    int
		phase GamePhase
	}{
		{0, PhaseEarly},
		{599999, PhaseEarly},
		{600000, PhaseMid},
		{443000, PhaseEarly}, // 7:23
		{1199999, PhaseMid},
		{1200000, PhaseLate},
		{2400000, PhaseLate},
	}
	for _, tt := range tests {
		if got := PhaseAt(tt.ms); got != tt.phase {
			t.Errorf("PhaseAt(%d) = %s, expected %s", tt.ms, got, tt.phase)
		}
	}
}

func TestZoneAt(t *testing.T) {
	tests := []struct {
		name string
		pos  riot.Position
		zone MapZone
	}{
		{"BlueFountain", riot.Position{X: 500, Y: 500}, ZoneBlueBase},
		{"RedFountain", riot.Position{X: 14500, Y: 14200}, ZoneRedBase},
		{"TopLaneEdge", riot.Position{X: 1200, Y: 12800}, ZoneTopLane},
		{"BotLaneEdge", riot.Position{X: 12800, Y: 1200}, ZoneBotLane},
		{"MidCenterDiagonal", riot.Position{X: 7400, Y: 7600}, ZoneMidLane},
		{"BaronSideRiver", riot.Position{X: 6000, Y: 9500}, ZoneRiverTop},
		{"DragonSideRiver", riot.Position{X: 9500, Y: 6000}, ZoneRiverBottom},
		{"BlueJungleQuadrant", riot.Position{X: 7000, Y: 4000}, ZoneBlueJungle},
		{"RedJungleQuadrant", riot.Position{X: 8000, Y: 11000}, ZoneRedJungle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ZoneAt(tt.pos); got != tt.zone {
				t.Errorf("ZoneAt(%d,%d) = %s, expected %s", tt.pos.X, tt.pos.Y, got, tt.zone)
			}
		})
	}
}

func TestRiverOverstep(t *testing.T) {
	// Deep in red territory: far past the river for blue, safe for red.
	pos := riot.Position{X: 9000, Y: 9000}
	if riverOverstep(pos, riot.TeamBlue) <= 0 {
		t.Error("Expected positive overstep for blue player in red half")
	}
	if riverOverstep(pos, riot.TeamRed) >= 0 {
		t.Error("Expected negative overstep for red player in red half")
	}
}
