package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/GepetoinTraining/lol-ai-coach/internal/analysis"
	"github.com/GepetoinTraining/lol-ai-coach/internal/config"
	"github.com/GepetoinTraining/lol-ai-coach/internal/pattern"
	"github.com/GepetoinTraining/lol-ai-coach/internal/riot"
	"github.com/GepetoinTraining/lol-ai-coach/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		FetchWorkers: 2,
		DefaultQueue: 420,
		Analysis: config.Analysis{
			WardRadius:           1500,
			WardLookback:         30 * time.Second,
			TowerRadius:          1000,
			TeamfightEnemies:     3,
			OverextendDistance:   1200,
			AheadGoldDiff:        500,
			AheadCSDiff:          15,
			EarlyDeathWindow:     2 * time.Minute,
			EarlyDeathMinCluster: 2,
		},
		Patterns: config.Patterns{
			ImprovingStreak: 3,
			BrokenStreak:    5,
			SampleLimit:     10,
			SameChampMin:    3,
		},
	}
}

// fixtureMatch builds a ranked match with the tracked player as participant 3,
// a blue side mid laner.
func fixtureMatch(matchID string, creation int64) *riot.MatchResponse {
	champs := []string{"Malphite", "LeeSin", "Ahri", "Jinx", "Thresh", "Darius", "Elise", "Syndra", "Caitlyn", "Leona"}
	positions := []string{"TOP", "JUNGLE", "MIDDLE", "BOTTOM", "UTILITY"}

	m := &riot.MatchResponse{}
	m.Metadata.MatchID = matchID
	m.Info.GameCreation = creation
	m.Info.GameDuration = 1800
	m.Info.QueueID = 420
	for i := 0; i < 10; i++ {
		team := riot.TeamBlue
		if i >= 5 {
			team = riot.TeamRed
		}
		m.Info.Participants = append(m.Info.Participants, riot.MatchParticipant{
			ParticipantID: i + 1,
			PUUID:         "puuid-" + champs[i],
			TeamID:        team,
			ChampionName:  champs[i],
			TeamPosition:  positions[i%5],
			Win:           team == riot.TeamBlue,
			Kills:         3,
			Deaths:        4,
			Assists:       5,
		})
	}
	m.Info.Participants[2].PUUID = "puuid-player"
	return m
}

func snapshotFrame(ts int) riot.TimelineFrame {
	frame := riot.TimelineFrame{Timestamp: ts, ParticipantFrames: map[string]riot.ParticipantFrame{}}
	for i := 1; i <= 10; i++ {
		frame.ParticipantFrames[strconv.Itoa(i)] = riot.ParticipantFrame{
			ParticipantID: i,
			TotalGold:     3000,
			Level:         8,
			MinionsKilled: 60,
		}
	}
	return frame
}

// fixtureTimeline holds one early river death: the enemy jungler kills the
// player at 7:23 with no friendly ward near.
func fixtureTimeline(matchID string) *riot.TimelineResponse {
	tl := &riot.TimelineResponse{}
	tl.Metadata.MatchID = matchID
	tl.Info.FrameInterval = 60000
	tl.Info.Frames = []riot.TimelineFrame{
		snapshotFrame(0),
		snapshotFrame(420000),
		{
			Timestamp: 480000,
			Events: []riot.TimelineEvent{
				{
					Type:      riot.EventChampionKill,
					Timestamp: 443000,
					Position:  riot.Position{X: 6000, Y: 9500},
					KillerID:  7,
					VictimID:  3,
				},
			},
			ParticipantFrames: map[string]riot.ParticipantFrame{},
		},
	}
	return tl
}

type fakeRiot struct {
	mu        sync.Mutex
	account   *riot.AccountResponse
	entries   []riot.LeagueEntryResponse
	matchIDs  []string
	matches   map[string]*riot.MatchResponse
	timelines map[string]*riot.TimelineResponse
	matchErr  map[string]error

	matchCalls []string
}

func newFakeRiot() *fakeRiot {
	return &fakeRiot{
		account:   &riot.AccountResponse{PUUID: "puuid-player", GameName: "Faker", TagLine: "KR1"},
		entries:   []riot.LeagueEntryResponse{{QueueType: "RANKED_SOLO_5x5", Tier: "GOLD", Rank: "II"}},
		matches:   map[string]*riot.MatchResponse{},
		timelines: map[string]*riot.TimelineResponse{},
		matchErr:  map[string]error{},
	}
}

func (f *fakeRiot) addMatch(matchID string, creation int64) {
	f.matchIDs = append([]string{matchID}, f.matchIDs...) // api lists newest first
	f.matches[matchID] = fixtureMatch(matchID, creation)
	f.timelines[matchID] = fixtureTimeline(matchID)
}

func (f *fakeRiot) AccountByRiotID(ctx context.Context, gameName, tagLine string) (*riot.AccountResponse, error) {
	return f.account, nil
}

func (f *fakeRiot) SummonerByPUUID(ctx context.Context, puuid string) (*riot.SummonerResponse, error) {
	return &riot.SummonerResponse{PUUID: puuid, SummonerLevel: 200}, nil
}

func (f *fakeRiot) LeagueEntries(ctx context.Context, puuid string) ([]riot.LeagueEntryResponse, error) {
	return f.entries, nil
}

func (f *fakeRiot) MatchIDs(ctx context.Context, puuid string, start, count, queue int) ([]string, error) {
	return f.matchIDs, nil
}

func (f *fakeRiot) Match(ctx context.Context, matchID string) (*riot.MatchResponse, error) {
	f.mu.Lock()
	f.matchCalls = append(f.matchCalls, matchID)
	f.mu.Unlock()
	if err := f.matchErr[matchID]; err != nil {
		return nil, err
	}
	return f.matches[matchID], nil
}

func (f *fakeRiot) Timeline(ctx context.Context, matchID string) (*riot.TimelineResponse, error) {
	if err := f.matchErr[matchID]; err != nil {
		return nil, err
	}
	return f.timelines[matchID], nil
}

type fakeStore struct {
	mu          sync.Mutex
	players     []store.Player
	matches     map[string]bool
	deaths      []store.StoredDeath
	nextDeathID int64
	states      map[pattern.Key]pattern.State
	rowIDs      map[pattern.Key]int64
	processed   map[string]bool
	applied     []string
	missions    []store.Mission
	moments     []store.VODMoment
	sessions    []store.CoachingSession
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		matches:   map[string]bool{},
		states:    map[pattern.Key]pattern.State{},
		rowIDs:    map[pattern.Key]int64{},
		processed: map[string]bool{},
	}
}

func (f *fakeStore) UpsertPlayer(ctx context.Context, p *store.Player) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.players = append(f.players, *p)
	return 1, nil
}

func (f *fakeStore) MatchExists(ctx context.Context, playerID int64, matchID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.matches[matchID], nil
}

func (f *fakeStore) InsertMatch(ctx context.Context, m *store.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches[m.MatchID] = true
	return nil
}

func (f *fakeStore) ReplaceDeaths(ctx context.Context, playerID int64, matchID string, deaths []analysis.Death) ([]store.StoredDeath, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stored []store.StoredDeath
	for _, d := range deaths {
		f.nextDeathID++
		sd := store.StoredDeath{ID: f.nextDeathID, PlayerID: playerID, Death: d}
		f.deaths = append(f.deaths, sd)
		stored = append(stored, sd)
	}
	return stored, nil
}

func (f *fakeStore) MatchProcessed(ctx context.Context, playerID int64, matchID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.processed[matchID], nil
}

func (f *fakeStore) States(ctx context.Context, playerID int64) (map[pattern.Key]pattern.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[pattern.Key]pattern.State, len(f.states))
	for k, v := range f.states {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) ApplyMatch(ctx context.Context, playerID int64, matchID string, updates []pattern.Update) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range updates {
		f.states[u.Key] = u.State
		if _, ok := f.rowIDs[u.Key]; !ok {
			f.rowIDs[u.Key] = int64(len(f.rowIDs) + 1)
		}
	}
	f.processed[matchID] = true
	f.applied = append(f.applied, matchID)
	return nil
}

func (f *fakeStore) Patterns(ctx context.Context, playerID int64) ([]store.PatternRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []store.PatternRow
	for k, s := range f.states {
		rows = append(rows, store.PatternRow{ID: f.rowIDs[k], PlayerID: playerID, Key: k, Category: "positioning", State: s})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows, nil
}

func (f *fakeStore) RecentDeaths(ctx context.Context, playerID int64, limit int) ([]store.StoredDeath, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]store.StoredDeath(nil), f.deaths...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ActiveMissions(ctx context.Context, playerID int64) ([]store.Mission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var active []store.Mission
	for _, m := range f.missions {
		if m.Status == store.MissionActive || m.Status == "" {
			active = append(active, m)
		}
	}
	return active, nil
}

func (f *fakeStore) CreateMission(ctx context.Context, m *store.Mission) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missions = append(f.missions, *m)
	return int64(len(f.missions)), nil
}

func (f *fakeStore) CreateVODMoment(ctx context.Context, v *store.VODMoment) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moments = append(f.moments, *v)
	return int64(len(f.moments)), nil
}

func (f *fakeStore) RecordSession(ctx context.Context, sess *store.CoachingSession) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, *sess)
	return int64(len(f.sessions)), nil
}

type fakeCache struct {
	mu        sync.Mutex
	matches   map[string]*riot.MatchResponse
	timelines map[string]*riot.TimelineResponse
	puts      int
}

func newFakeCache() *fakeCache {
	return &fakeCache{matches: map[string]*riot.MatchResponse{}, timelines: map[string]*riot.TimelineResponse{}}
}

func (f *fakeCache) Get(ctx context.Context, matchID string) (*riot.MatchResponse, *riot.TimelineResponse, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[matchID]
	if !ok {
		return nil, nil, false
	}
	return m, f.timelines[matchID], true
}

func (f *fakeCache) Put(ctx context.Context, matchID string, match *riot.MatchResponse, timeline *riot.TimelineResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches[matchID] = match
	f.timelines[matchID] = timeline
	f.puts++
	return nil
}

func testRequest(count int) Request {
	return Request{
		GameName:     "Faker",
		TagLine:      "KR1",
		Platform:     "kr",
		MatchCount:   count,
		WithTimeline: true,
	}
}

func TestPipeline_Run_FullFlow(t *testing.T) {
	client := newFakeRiot()
	client.addMatch("KR_1", 1000)
	client.addMatch("KR_2", 2000)
	st := newFakeStore()

	p := New(client, st, testConfig())
	report, err := p.Run(context.Background(), testRequest(2))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.MatchesAnalyzed != 2 {
		t.Errorf("expected 2 matches analyzed, got %d", report.MatchesAnalyzed)
	}
	if report.DeathsExtracted != 2 {
		t.Errorf("expected 2 deaths extracted, got %d", report.DeathsExtracted)
	}

	state, ok := st.states[pattern.KeyRiverDeathNoWard]
	if !ok {
		t.Fatal("expected river_death_no_ward state after two river deaths")
	}
	if state.Occurrences != 2 {
		t.Errorf("occurrences = %d, want 2", state.Occurrences)
	}
	if report.PriorityPattern != pattern.KeyRiverDeathNoWard {
		t.Errorf("priority pattern = %s, want %s", report.PriorityPattern, pattern.KeyRiverDeathNoWard)
	}

	if len(st.moments) == 0 {
		t.Error("expected VOD moments queued for the priority pattern")
	}
	if len(st.missions) != 1 {
		t.Fatalf("expected exactly one mission, got %d", len(st.missions))
	}
	if len(st.sessions) != 1 {
		t.Fatalf("expected one recorded session, got %d", len(st.sessions))
	}
	if st.sessions[0].RunID != report.RunID {
		t.Errorf("session run id = %s, want %s", st.sessions[0].RunID, report.RunID)
	}
	if st.sessions[0].MatchesAnalyzed != 2 {
		t.Errorf("session matches analyzed = %d, want 2", st.sessions[0].MatchesAnalyzed)
	}
}

func TestPipeline_Run_FoldsChronologically(t *testing.T) {
	client := newFakeRiot()
	// Added oldest first, so MatchIDs lists KR_3 KR_2 KR_1 newest first.
	client.addMatch("KR_1", 1000)
	client.addMatch("KR_2", 2000)
	client.addMatch("KR_3", 3000)
	st := newFakeStore()

	p := New(client, st, testConfig())
	if _, err := p.Run(context.Background(), testRequest(3)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"KR_1", "KR_2", "KR_3"}
	if fmt.Sprint(st.applied) != fmt.Sprint(want) {
		t.Errorf("matches folded in order %v, want %v", st.applied, want)
	}
}

func TestPipeline_Run_SkipsFailedFetch(t *testing.T) {
	client := newFakeRiot()
	client.addMatch("KR_1", 1000)
	client.addMatch("KR_2", 2000)
	client.matchErr["KR_2"] = fmt.Errorf("match: %w", riot.ErrNotFound)
	st := newFakeStore()

	p := New(client, st, testConfig())
	report, err := p.Run(context.Background(), testRequest(2))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.MatchesAnalyzed != 1 {
		t.Errorf("expected 1 match analyzed, got %d", report.MatchesAnalyzed)
	}
	if len(report.Skipped) != 1 {
		t.Fatalf("expected 1 skip, got %d", len(report.Skipped))
	}
	if report.Skipped[0].MatchID != "KR_2" || report.Skipped[0].Reason != "not_found" {
		t.Errorf("unexpected skip: %+v", report.Skipped[0])
	}
}

func TestPipeline_Run_FatalCredentials(t *testing.T) {
	client := newFakeRiot()
	client.addMatch("KR_1", 1000)
	client.matchErr["KR_1"] = fmt.Errorf("match: %w", riot.ErrInvalidCredentials)
	st := newFakeStore()

	p := New(client, st, testConfig())
	_, err := p.Run(context.Background(), testRequest(1))
	if !errors.Is(err, riot.ErrInvalidCredentials) {
		t.Fatalf("expected credential error, got %v", err)
	}
	if len(st.sessions) != 0 {
		t.Error("failed run must not record a session")
	}
}

func TestPipeline_Run_CacheHitSkipsAPI(t *testing.T) {
	client := newFakeRiot()
	client.addMatch("KR_1", 1000)
	cache := newFakeCache()
	cache.matches["KR_1"] = fixtureMatch("KR_1", 1000)
	cache.timelines["KR_1"] = fixtureTimeline("KR_1")
	st := newFakeStore()

	p := New(client, st, testConfig(), WithCache(cache))
	report, err := p.Run(context.Background(), testRequest(1))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(client.matchCalls) != 0 {
		t.Errorf("expected no API match calls on cache hit, got %v", client.matchCalls)
	}
	if report.MatchesAnalyzed != 1 {
		t.Errorf("expected 1 match analyzed, got %d", report.MatchesAnalyzed)
	}
	if p.CacheHits() != 1 {
		t.Errorf("cache hits = %d, want 1", p.CacheHits())
	}
}

func TestPipeline_Run_FetchPopulatesCache(t *testing.T) {
	client := newFakeRiot()
	client.addMatch("KR_1", 1000)
	cache := newFakeCache()
	st := newFakeStore()

	p := New(client, st, testConfig(), WithCache(cache))
	if _, err := p.Run(context.Background(), testRequest(1)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
}

func TestPipeline_Run_WithoutTimeline(t *testing.T) {
	client := newFakeRiot()
	client.addMatch("KR_1", 1000)
	st := newFakeStore()

	req := testRequest(1)
	req.WithTimeline = false

	p := New(client, st, testConfig())
	report, err := p.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.MatchesAnalyzed != 1 {
		t.Errorf("expected 1 match analyzed, got %d", report.MatchesAnalyzed)
	}
	if report.DeathsExtracted != 0 {
		t.Errorf("expected no deaths without a timeline, got %d", report.DeathsExtracted)
	}
	if len(st.applied) != 0 {
		t.Errorf("pattern state must not advance without a timeline, folded %v", st.applied)
	}
	if !st.matches["KR_1"] {
		t.Error("match stats row should still be stored")
	}
}

func TestPipeline_Run_SecondRunIsIdempotent(t *testing.T) {
	client := newFakeRiot()
	client.addMatch("KR_1", 1000)
	st := newFakeStore()

	p := New(client, st, testConfig())
	if _, err := p.Run(context.Background(), testRequest(1)); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := p.Run(context.Background(), testRequest(1)); err != nil {
		t.Fatalf("second run: %v", err)
	}

	state := st.states[pattern.KeyRiverDeathNoWard]
	if state.Occurrences != 1 {
		t.Errorf("occurrences after re-run = %d, want 1", state.Occurrences)
	}
	if len(st.applied) != 1 {
		t.Errorf("expected 1 pattern commit, got %d", len(st.applied))
	}
}

// TestPipeline_Run_SecondProcessSkipsProcessedMatches exercises a restart: a
// fresh pipeline with an empty dedupe filter against a store that already
// holds the match. The store check must keep it from re-minting death rows.
func TestPipeline_Run_SecondProcessSkipsProcessedMatches(t *testing.T) {
	client := newFakeRiot()
	client.addMatch("KR_1", 1000)
	st := newFakeStore()

	first := New(client, st, testConfig())
	if _, err := first.Run(context.Background(), testRequest(1)); err != nil {
		t.Fatalf("first process: %v", err)
	}
	deathsAfterFirst := st.nextDeathID
	fetchesAfterFirst := len(client.matchCalls)

	second := New(client, st, testConfig())
	report, err := second.Run(context.Background(), testRequest(1))
	if err != nil {
		t.Fatalf("second process: %v", err)
	}

	if report.MatchesAnalyzed != 0 {
		t.Errorf("matches analyzed in second process = %d, want 0", report.MatchesAnalyzed)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Reason != "already_processed" {
		t.Errorf("expected KR_1 skipped as already_processed, got %+v", report.Skipped)
	}
	if st.nextDeathID != deathsAfterFirst {
		t.Errorf("death rows re-minted: id counter %d, want %d", st.nextDeathID, deathsAfterFirst)
	}
	if len(client.matchCalls) != fetchesAfterFirst {
		t.Errorf("expected no new match fetches, got %v", client.matchCalls)
	}
	if len(st.applied) != 1 {
		t.Errorf("expected 1 pattern commit, got %d", len(st.applied))
	}
}

func TestParseRiotID(t *testing.T) {
	tests := []struct {
		in       string
		gameName string
		tagLine  string
		wantErr  bool
	}{
		{"Faker#KR1", "Faker", "KR1", false},
		{"Game Name#BR1", "Game Name", "BR1", false},
		{"Tricky#Name#TAG", "Tricky#Name", "TAG", false},
		{"NoTag", "", "", true},
		{"#TAG", "", "", true},
		{"Name#", "", "", true},
	}
	for _, tt := range tests {
		gameName, tagLine, err := ParseRiotID(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRiotID(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRiotID(%q): %v", tt.in, err)
			continue
		}
		if gameName != tt.gameName || tagLine != tt.tagLine {
			t.Errorf("ParseRiotID(%q) = %q, %q; want %q, %q", tt.in, gameName, tagLine, tt.gameName, tt.tagLine)
		}
	}
}

func TestRequest_Validate(t *testing.T) {
	base := testRequest(20)
	if err := base.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	bad := base
	bad.Platform = "xx1"
	if err := bad.Validate(); !errors.Is(err, riot.ErrInvalidRegion) {
		t.Errorf("expected invalid region error, got %v", err)
	}

	bad = base
	bad.MatchCount = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero match count accepted")
	}

	bad = base
	bad.MatchCount = 101
	if err := bad.Validate(); err == nil {
		t.Error("match count over 100 accepted")
	}

	bad = base
	bad.TagLine = "X"
	if err := bad.Validate(); err == nil {
		t.Error("one character tag accepted")
	}
}
