package riot

// AccountResponse represents the response from /riot/account/v1/accounts/by-riot-id
type AccountResponse struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// SummonerResponse represents the response from /lol/summoner/v4/summoners/by-puuid
type SummonerResponse struct {
	ID            string `json:"id"`
	PUUID         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	SummonerLevel int    `json:"summonerLevel"`
}

// LeagueEntryResponse represents a ranked league entry from /lol/league/v4/entries/by-puuid
type LeagueEntryResponse struct {
	LeagueID     string `json:"leagueId"`
	QueueType    string `json:"queueType"` // RANKED_SOLO_5x5, RANKED_FLEX_SR
	Tier         string `json:"tier"`
	Rank         string `json:"rank"` // I, II, III, IV
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// MatchResponse represents the response from /lol/match/v5/matches/{matchId}
type MatchResponse struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameCreation       int64              `json:"gameCreation"`
	GameStartTimestamp int64              `json:"gameStartTimestamp"`
	GameDuration       int                `json:"gameDuration"` // seconds
	GameVersion        string             `json:"gameVersion"`
	QueueID            int                `json:"queueId"`
	Participants       []MatchParticipant `json:"participants"`
}

type MatchParticipant struct {
	ParticipantID               int    `json:"participantId"`
	PUUID                       string `json:"puuid"`
	RiotIdGameName              string `json:"riotIdGameName"`
	RiotIdTagline               string `json:"riotIdTagline"`
	TeamID                      int    `json:"teamId"` // 100 blue, 200 red
	ChampionID                  int    `json:"championId"`
	ChampionName                string `json:"championName"`
	TeamPosition                string `json:"teamPosition"` // TOP, JUNGLE, MIDDLE, BOTTOM, UTILITY
	Win                         bool   `json:"win"`
	Kills                       int    `json:"kills"`
	Deaths                      int    `json:"deaths"`
	Assists                     int    `json:"assists"`
	TotalMinionsKilled          int    `json:"totalMinionsKilled"`
	NeutralMinionsKilled        int    `json:"neutralMinionsKilled"`
	VisionScore                 int    `json:"visionScore"`
	GoldEarned                  int    `json:"goldEarned"`
	ChampLevel                  int    `json:"champLevel"`
	TotalDamageDealtToChampions int    `json:"totalDamageDealtToChampions"`
}

// CS returns lane plus jungle minions, the number players mean by "CS".
func (p MatchParticipant) CS() int {
	return p.TotalMinionsKilled + p.NeutralMinionsKilled
}

// TimelineResponse represents the response from /lol/match/v5/matches/{matchId}/timeline
type TimelineResponse struct {
	Metadata TimelineMetadata `json:"metadata"`
	Info     TimelineInfo     `json:"info"`
}

type TimelineMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs, index+1 = participantId
}

type TimelineInfo struct {
	FrameInterval int             `json:"frameInterval"` // ms, normally 60000
	Frames        []TimelineFrame `json:"frames"`
}

// TimelineFrame is one snapshot of the game plus the events since the
// previous frame. ParticipantFrames is keyed by participant id as a string
// ("1".."10") in the wire format.
type TimelineFrame struct {
	Timestamp         int                         `json:"timestamp"` // ms
	Events            []TimelineEvent             `json:"events"`
	ParticipantFrames map[string]ParticipantFrame `json:"participantFrames"`
}

// ParticipantFrame is the per-player state snapshot inside a frame.
type ParticipantFrame struct {
	ParticipantID       int      `json:"participantId"`
	TotalGold           int      `json:"totalGold"`
	CurrentGold         int      `json:"currentGold"`
	Level               int      `json:"level"`
	XP                  int      `json:"xp"`
	MinionsKilled       int      `json:"minionsKilled"`
	JungleMinionsKilled int      `json:"jungleMinionsKilled"`
	Position            Position `json:"position"`
}

// CS returns lane plus jungle minions at this snapshot.
func (f ParticipantFrame) CS() int {
	return f.MinionsKilled + f.JungleMinionsKilled
}

// Position is a map coordinate. The Summoner's Rift playable area spans
// roughly 0..15000 on both axes with the blue fountain near the origin.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Team ids as they appear in match and timeline payloads.
const (
	TeamBlue = 100
	TeamRed  = 200
)

// Timeline event types the analyzer cares about.
const (
	EventChampionKill = "CHAMPION_KILL"
	EventWardPlaced   = "WARD_PLACED"
	EventWardKill     = "WARD_KILL"
	EventBuildingKill = "BUILDING_KILL"
)

type TimelineEvent struct {
	Type      string   `json:"type"`
	Timestamp int      `json:"timestamp"` // ms from game start
	Position  Position `json:"position"`

	// CHAMPION_KILL
	KillerID                int   `json:"killerId,omitempty"`
	VictimID                int   `json:"victimId,omitempty"`
	AssistingParticipantIDs []int `json:"assistingParticipantIds,omitempty"`

	// WARD_PLACED / WARD_KILL
	CreatorID int    `json:"creatorId,omitempty"`
	WardType  string `json:"wardType,omitempty"`

	// BUILDING_KILL
	BuildingType string `json:"buildingType,omitempty"`
	TowerType    string `json:"towerType,omitempty"`
	LaneType     string `json:"laneType,omitempty"`
	TeamID       int    `json:"teamId,omitempty"`
}

// ParticipantByPUUID finds a match participant by PUUID.
func (m *MatchResponse) ParticipantByPUUID(puuid string) (MatchParticipant, bool) {
	for _, p := range m.Info.Participants {
		if p.PUUID == puuid {
			return p, true
		}
	}
	return MatchParticipant{}, false
}
