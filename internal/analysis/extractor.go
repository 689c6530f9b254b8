package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/GepetoinTraining/lol-ai-coach/internal/config"
	"github.com/GepetoinTraining/lol-ai-coach/internal/riot"
)

var (
	// ErrPlayerNotInMatch means the tracked PUUID is not a participant.
	ErrPlayerNotInMatch = errors.New("analysis: player not found in match")

	// ErrMalformedTimeline means the timeline payload cannot be walked.
	ErrMalformedTimeline = errors.New("analysis: malformed timeline")
)

// Extractor walks match timelines and produces one enriched Death per
// CHAMPION_KILL of the tracked player. The walk is a pure function of its
// inputs, so re-running a match yields byte-identical results.
type Extractor struct {
	cfg        config.Analysis
	classifier *Classifier
}

func NewExtractor(cfg config.Analysis) *Extractor {
	return &Extractor{cfg: cfg, classifier: NewClassifier(cfg)}
}

// liveWard is a ward believed to still be on the map during the walk. The
// whole team's wards are tracked so WARD_KILL events can be matched, but
// only the tracked player's own wards count as coverage.
type liveWard struct {
	pos      riot.Position
	creator  int
	team     int
	wardType string
	placedAt int
}

// Extract returns the tracked player's deaths in chronological order.
func (e *Extractor) Extract(match *riot.MatchResponse, timeline *riot.TimelineResponse, puuid string) ([]Death, error) {
	player, ok := match.ParticipantByPUUID(puuid)
	if !ok {
		return nil, fmt.Errorf("%w: puuid %s in match %s", ErrPlayerNotInMatch, puuid, match.Metadata.MatchID)
	}
	if len(timeline.Info.Frames) == 0 {
		return nil, fmt.Errorf("%w: no frames in match %s", ErrMalformedTimeline, match.Metadata.MatchID)
	}

	participants := make(map[int]riot.MatchParticipant, len(match.Info.Participants))
	for _, p := range match.Info.Participants {
		participants[p.ParticipantID] = p
	}

	opponentID := laneOpponent(match, player)

	tracker := newTurretTracker()
	var wards []liveWard

	// Snapshot of each participant at the last frame boundary before the
	// events currently being processed. Events inside frame i happened
	// before frame i's own participantFrames were sampled.
	snapshots := make(map[int]riot.ParticipantFrame, 10)

	var deaths []Death
	lookbackMS := int(e.cfg.WardLookback / time.Millisecond)

	for _, frame := range timeline.Info.Frames {
		for _, ev := range frame.Events {
			switch ev.Type {
			case riot.EventWardPlaced:
				creator, ok := participants[ev.CreatorID]
				if !ok {
					continue
				}
				wards = append(wards, liveWard{
					pos:      ev.Position,
					creator:  ev.CreatorID,
					team:     creator.TeamID,
					wardType: ev.WardType,
					placedAt: ev.Timestamp,
				})

			case riot.EventWardKill:
				killer, ok := participants[ev.KillerID]
				if !ok {
					continue
				}
				wards = removeOldestWard(wards, enemyOf(killer.TeamID), ev.WardType)

			case riot.EventBuildingKill:
				tracker.destroy(ev)

			case riot.EventChampionKill:
				if ev.VictimID != player.ParticipantID {
					continue
				}
				deaths = append(deaths, e.buildDeath(match, player, opponentID, participants, snapshots, wards, tracker, ev, lookbackMS))
			}
		}

		for _, pf := range frame.ParticipantFrames {
			snapshots[pf.ParticipantID] = pf
		}
	}

	return deaths, nil
}

func (e *Extractor) buildDeath(
	match *riot.MatchResponse,
	player riot.MatchParticipant,
	opponentID int,
	participants map[int]riot.MatchParticipant,
	snapshots map[int]riot.ParticipantFrame,
	wards []liveWard,
	tracker *turretTracker,
	ev riot.TimelineEvent,
	lookbackMS int,
) Death {
	d := Death{
		MatchID:             match.Metadata.MatchID,
		TimestampMS:         ev.Timestamp,
		Phase:               PhaseAt(ev.Timestamp),
		PositionX:           ev.Position.X,
		PositionY:           ev.Position.Y,
		Zone:                ZoneAt(ev.Position),
		PlayerChampion:      player.ChampionName,
		KillerParticipantID: ev.KillerID,
	}

	if killer, ok := participants[ev.KillerID]; ok {
		d.KillerChampion = killer.ChampionName
	}
	for _, id := range ev.AssistingParticipantIDs {
		if assist, ok := participants[id]; ok {
			d.AssistingChampions = append(d.AssistingChampions, assist.ChampionName)
		}
	}

	d.HadWardNearby = wardNearby(wards, ev, player.ParticipantID, e.cfg.WardRadius, lookbackMS)
	d.Overextended = riverOverstep(ev.Position, player.TeamID) > e.cfg.OverextendDistance

	if pf, ok := snapshots[player.ParticipantID]; ok {
		d.PlayerGold = pf.TotalGold
		d.PlayerLevel = pf.Level
		if of, ok := snapshots[opponentID]; ok {
			d.GoldDiff = pf.TotalGold - of.TotalGold
			d.CSDiff = pf.CS() - of.CS()
			d.LevelDiff = pf.Level - of.Level
		}
	}

	junglerInvolved := false
	if killer, ok := participants[ev.KillerID]; ok && killer.TeamPosition == "JUNGLE" {
		junglerInvolved = true
	}
	for _, id := range ev.AssistingParticipantIDs {
		if assist, ok := participants[id]; ok && assist.TeamPosition == "JUNGLE" {
			junglerInvolved = true
		}
	}

	d.Type = e.classifier.Classify(d, Signals{
		NearEnemyTower:  tracker.nearStanding(ev.Position, enemyOf(player.TeamID), e.cfg.TowerRadius),
		JunglerInvolved: junglerInvolved,
	})
	return d
}

// wardNearby reports whether a ward the player placed within the lookback
/// window still covers the death position. A teammate's ward does not count:
// the habit being measured is the player's own vision discipline.
func wardNearby(wards []liveWard, ev riot.TimelineEvent, playerID int, radius float64, lookbackMS int) bool {
	for _, w := range wards {
		if w.creator != playerID {
			continue
		}
		if w.placedAt > ev.Timestamp || ev.Timestamp-w.placedAt > lookbackMS {
			continue
		}
		if distance(w.pos, ev.Position) <= radius {
			return true
		}
	}
	return false
}

// removeOldestWard drops the earliest live ward of the given team, matching
// by ward type when one is reported.
func removeOldestWard(wards []liveWard, team int, wardType string) []liveWard {
	for i, w := range wards {
		if w.team != team {
			continue
		}
		if wardType != "" && w.wardType != wardType {
			continue
		}
		return append(wards[:i], wards[i+1:]...)
	}
	return wards
}

// laneOpponent returns the participant id of the enemy playing the same
// position, or zero when no unambiguous opponent exists.
func laneOpponent(match *riot.MatchResponse, player riot.MatchParticipant) int {
	if player.TeamPosition == "" {
		return 0
	}
	for _, p := range match.Info.Participants {
		if p.TeamID != player.TeamID && p.TeamPosition == player.TeamPosition {
			return p.ParticipantID
		}
	}
	return 0
}

func enemyOf(teamID int) int {
	if teamID == riot.TeamBlue {
		return riot.TeamRed
	}
	return riot.TeamBlue
}
