package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/google/uuid"

	"github.com/GepetoinTraining/lol-ai-coach/internal/analysis"
	"github.com/GepetoinTraining/lol-ai-coach/internal/coach"
	"github.com/GepetoinTraining/lol-ai-coach/internal/config"
	"github.com/GepetoinTraining/lol-ai-coach/internal/pattern"
	"github.com/GepetoinTraining/lol-ai-coach/internal/riot"
	"github.com/GepetoinTraining/lol-ai-coach/internal/store"
)

// RiotAPI is the slice of the Riot client the pipeline uses.
type RiotAPI interface {
	AccountByRiotID(ctx context.Context, gameName, tagLine string) (*riot.AccountResponse, error)
	SummonerByPUUID(ctx context.Context, puuid string) (*riot.SummonerResponse, error)
	LeagueEntries(ctx context.Context, puuid string) ([]riot.LeagueEntryResponse, error)
	MatchIDs(ctx context.Context, puuid string, start, count, queue int) ([]string, error)
	Match(ctx context.Context, matchID string) (*riot.MatchResponse, error)
	Timeline(ctx context.Context, matchID string) (*riot.TimelineResponse, error)
}

// DataStore is the persistence surface the pipeline writes through. The
// embedded pattern.Repo half is handed to the pattern engine unchanged.
type DataStore interface {
	pattern.Repo

	UpsertPlayer(ctx context.Context, p *store.Player) (int64, error)
	MatchExists(ctx context.Context, playerID int64, matchID string) (bool, error)
	InsertMatch(ctx context.Context, m *store.Match) error
	ReplaceDeaths(ctx context.Context, playerID int64, matchID string, deaths []analysis.Death) ([]store.StoredDeath, error)
	Patterns(ctx context.Context, playerID int64) ([]store.PatternRow, error)
	RecentDeaths(ctx context.Context, playerID int64, limit int) ([]store.StoredDeath, error)
	ActiveMissions(ctx context.Context, playerID int64) ([]store.Mission, error)
	CreateMission(ctx context.Context, m *store.Mission) (int64, error)
	CreateVODMoment(ctx context.Context, v *store.VODMoment) (int64, error)
	RecordSession(ctx context.Context, sess *store.CoachingSession) (int64, error)
}

// MatchCache is an optional local payload cache consulted before the API.
type MatchCache interface {
	Get(ctx context.Context, matchID string) (*riot.MatchResponse, *riot.TimelineResponse, bool)
	Put(ctx context.Context, matchID string, match *riot.MatchResponse, timeline *riot.TimelineResponse) error
}

// CoachService generates the conversational layer on top of a run.
type CoachService interface {
	Generate(ctx context.Context, payload coach.AnalysisPayload) (*coach.GenerateResponse, error)
}

// Pipeline runs the full analysis flow for one player.
type Pipeline struct {
	client    RiotAPI
	store     DataStore
	cache     MatchCache
	coach     CoachService
	engine    *pattern.Engine
	extractor *analysis.Extractor
	cfg       *config.Config

	// Process-lifetime memory of matches the store confirmed processed.
	// Saves a store round trip on repeat runs. A false positive defers a
	// match to the next process, which starts with an empty filter.
	seenMu sync.Mutex
	seen   *bloom.BloomFilter

	matchesFetched atomic.Int64
	cacheHits      atomic.Int64
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithCache plugs in a local match payload cache.
func WithCache(c MatchCache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithCoach plugs in the coaching text service.
func WithCoach(c CoachService) Option {
	return func(p *Pipeline) { p.coach = c }
}

// New creates a pipeline. The pattern engine and death extractor are built
// here so every run shares one configuration.
func New(client RiotAPI, st DataStore, cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		client:    client,
		store:     st,
		cfg:       cfg,
		engine:    pattern.NewEngine(st, pattern.Config{Analysis: cfg.Analysis, Patterns: cfg.Patterns}),
		extractor: analysis.NewExtractor(cfg.Analysis),
		seen:      bloom.NewWithEstimates(100000, 0.01),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// matchJob is one match id queued for fetching.
type matchJob struct {
	matchID string
}

// matchResult is a fetched match, its timeline, or the error that stopped it.
type matchResult struct {
	matchID  string
	match    *riot.MatchResponse
	timeline *riot.TimelineResponse
	err      error
}

// SkippedMatch explains why one match was left out of the run.
type SkippedMatch struct {
	MatchID string
	Reason  string
}

// fatal run-ending conditions vs per-match skips.
func isFatal(err error) bool {
	return errors.Is(err, riot.ErrInvalidCredentials) || errors.Is(err, riot.ErrInvalidRegion)
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, riot.ErrNotFound):
		return "not_found"
	case errors.Is(err, riot.ErrRateLimited), errors.Is(err, riot.ErrRateLimitTimeout):
		return "rate_limited"
	case errors.Is(err, riot.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, analysis.ErrPlayerNotInMatch):
		return "player_not_in_match"
	case errors.Is(err, analysis.ErrMalformedTimeline):
		return "malformed_timeline"
	default:
		return "error"
	}
}

// Run executes one analysis: resolve the player, fetch their recent matches
// concurrently, then fold each match into deaths and pattern state in
// chronological order.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	report := &Report{
		RunID:            uuid.New().String(),
		GameName:         req.GameName,
		TagLine:          req.TagLine,
		Platform:         req.Platform,
		MatchesRequested: req.MatchCount,
	}
	log.Printf("[Analyzer] run %s: %s#%s on %s, %d matches",
		report.RunID, req.GameName, req.TagLine, req.Platform, req.MatchCount)

	playerID, puuid, err := p.resolvePlayer(ctx, req, report)
	if err != nil {
		return nil, err
	}
	report.PlayerID = playerID

	queue := req.Queue
	if queue == 0 {
		queue = p.cfg.DefaultQueue
	}
	matchIDs, err := p.client.MatchIDs(ctx, puuid, 0, req.MatchCount, queue)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	if len(matchIDs) == 0 {
		log.Printf("[Analyzer] no matches found for %s#%s", req.GameName, req.TagLine)
		report.Elapsed = time.Since(start)
		return report, nil
	}

	// The store is the source of truth for processed matches. The bloom
	// filter only short-circuits the lookup for matches this process has
	// already confirmed; a fresh process starts with an empty filter and
	// must ask the store before re-fetching anything.
	toFetch := matchIDs[:0:0]
	for _, id := range matchIDs {
		if !p.Seen(id) {
			done, err := p.store.MatchProcessed(ctx, playerID, id)
			if err != nil {
				return nil, fmt.Errorf("checking processed matches: %w", err)
			}
			if !done {
				toFetch = append(toFetch, id)
				continue
			}
			p.markSeen(id)
		}
		report.Skipped = append(report.Skipped, SkippedMatch{MatchID: id, Reason: "already_processed"})
	}
	if len(toFetch) == 0 {
		log.Printf("[Analyzer] all %d matches already processed", len(matchIDs))
	}

	results, fetchErr := p.fetchMatches(ctx, toFetch, req.WithTimeline, report)
	if fetchErr != nil {
		return nil, fetchErr
	}

	// Oldest first. Streak counters only make sense when matches fold in
	// the order they were played.
	sort.Slice(results, func(i, j int) bool {
		return results[i].match.Info.GameCreation < results[j].match.Info.GameCreation
	})

	for _, res := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.processMatch(ctx, playerID, puuid, res, req.WithTimeline, report); err != nil {
			if isFatal(err) {
				return nil, err
			}
			report.Skipped = append(report.Skipped, SkippedMatch{MatchID: res.matchID, Reason: skipReason(err)})
			log.Printf("[Analyzer] skipping %s: %v", res.matchID, err)
			continue
		}
		p.markSeen(res.matchID)
		report.MatchesAnalyzed++
	}

	if err := p.surfaceCoaching(ctx, playerID, req, report); err != nil {
		// Coaching output is best effort once matches are committed.
		log.Printf("[Analyzer] coaching stage incomplete: %v", err)
	}

	report.Elapsed = time.Since(start)
	p.recordSession(ctx, playerID, req, report)
	return report, nil
}

// resolvePlayer maps the riot id to a PUUID and upserts the player row with
// their current solo queue rank.
func (p *Pipeline) resolvePlayer(ctx context.Context, req Request, report *Report) (int64, string, error) {
	account, err := p.client.AccountByRiotID(ctx, req.GameName, req.TagLine)
	if err != nil {
		if errors.Is(err, riot.ErrNotFound) {
			return 0, "", fmt.Errorf("no account named %s#%s: %w", req.GameName, req.TagLine, err)
		}
		return 0, "", fmt.Errorf("resolving account: %w", err)
	}

	if _, err := p.client.SummonerByPUUID(ctx, account.PUUID); err != nil {
		return 0, "", fmt.Errorf("resolving summoner on %s: %w", req.Platform, err)
	}

	player := &store.Player{
		GameName: account.GameName,
		TagLine:  account.TagLine,
		Platform: req.Platform,
		PUUID:    account.PUUID,
	}
	entries, err := p.client.LeagueEntries(ctx, account.PUUID)
	if err != nil && !errors.Is(err, riot.ErrNotFound) {
		return 0, "", fmt.Errorf("fetching rank: %w", err)
	}
	for _, entry := range entries {
		if entry.QueueType == "RANKED_SOLO_5x5" {
			player.RankTier = entry.Tier
			player.RankDivision = entry.Rank
			break
		}
	}
	report.RankTier = player.RankTier
	report.RankDivision = player.RankDivision

	id, err := p.store.UpsertPlayer(ctx, player)
	if err != nil {
		return 0, "", fmt.Errorf("upserting player: %w", err)
	}
	return id, account.PUUID, nil
}

// fetchMatches pulls match and timeline payloads through a small worker
// pool, consulting the cache first. A fatal API error cancels the pool and
// fails the run; anything else becomes a skip on the report.
func (p *Pipeline) fetchMatches(ctx context.Context, matchIDs []string, withTimeline bool, report *Report) ([]matchResult, error) {
	workers := p.cfg.FetchWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(matchIDs) {
		workers = len(matchIDs)
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan matchJob, len(matchIDs))
	results := make(chan matchResult, len(matchIDs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-fetchCtx.Done():
					return
				default:
				}
				results <- p.fetchOne(fetchCtx, job.matchID, withTimeline)
			}
		}(i)
	}

	for _, id := range matchIDs {
		jobs <- matchJob{matchID: id}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var fetched []matchResult
	var fatalErr error
	for res := range results {
		if res.err != nil {
			if isFatal(res.err) && fatalErr == nil {
				fatalErr = res.err
				cancel()
			} else if fatalErr == nil {
				report.Skipped = append(report.Skipped, SkippedMatch{MatchID: res.matchID, Reason: skipReason(res.err)})
				log.Printf("[Analyzer] fetch failed for %s: %v", res.matchID, res.err)
			}
			continue
		}
		fetched = append(fetched, res)
	}
	if fatalErr != nil {
		return nil, fatalErr
	}
	return fetched, nil
}

func (p *Pipeline) fetchOne(ctx context.Context, matchID string, withTimeline bool) matchResult {
	if p.cache != nil {
		if match, timeline, ok := p.cache.Get(ctx, matchID); ok && (!withTimeline || timeline != nil) {
			p.cacheHits.Add(1)
			return matchResult{matchID: matchID, match: match, timeline: timeline}
		}
	}

	match, err := p.client.Match(ctx, matchID)
	if err != nil {
		return matchResult{matchID: matchID, err: err}
	}
	var timeline *riot.TimelineResponse
	if withTimeline {
		timeline, err = p.client.Timeline(ctx, matchID)
		if err != nil {
			return matchResult{matchID: matchID, err: err}
		}
	}
	p.matchesFetched.Add(1)

	if p.cache != nil {
		if err := p.cache.Put(ctx, matchID, match, timeline); err != nil {
			log.Printf("[Analyzer] cache write failed for %s: %v", matchID, err)
		}
	}
	return matchResult{matchID: matchID, match: match, timeline: timeline}
}

// processMatch commits one match: stats row, extracted deaths, then pattern
// state. The store and engine are both idempotent, so a crash between steps
// heals on the next run.
func (p *Pipeline) processMatch(ctx context.Context, playerID int64, puuid string, res matchResult, withTimeline bool, report *Report) error {
	participant, ok := res.match.ParticipantByPUUID(puuid)
	if !ok {
		return fmt.Errorf("match %s: %w", res.matchID, analysis.ErrPlayerNotInMatch)
	}

	if err := p.store.InsertMatch(ctx, &store.Match{
		MatchID:         res.matchID,
		PlayerID:        playerID,
		Champion:        participant.ChampionName,
		Role:            participant.TeamPosition,
		Win:             participant.Win,
		Kills:           participant.Kills,
		Deaths:          participant.Deaths,
		Assists:         participant.Assists,
		CS:              participant.CS(),
		VisionScore:     participant.VisionScore,
		GameDurationSec: res.match.Info.GameDuration,
		PlayedAt:        time.UnixMilli(res.match.Info.GameCreation),
	}); err != nil {
		return fmt.Errorf("storing match %s: %w", res.matchID, err)
	}

	// Without a timeline there is nothing to learn from, and a pattern
	// miss would be indistinguishable from missing data. Stats only.
	if !withTimeline || res.timeline == nil {
		return nil
	}

	deaths, err := p.extractor.Extract(res.match, res.timeline, puuid)
	if err != nil {
		return err
	}
	stored, err := p.store.ReplaceDeaths(ctx, playerID, res.matchID, deaths)
	if err != nil {
		return fmt.Errorf("storing deaths for %s: %w", res.matchID, err)
	}
	report.DeathsExtracted += len(stored)

	matchDeaths := make([]pattern.MatchDeath, len(stored))
	for i, d := range stored {
		matchDeaths[i] = pattern.MatchDeath{ID: d.ID, Death: d.Death}
	}
	return p.engine.ProcessMatch(ctx, playerID, res.matchID, matchDeaths)
}

// surfaceCoaching turns the run's pattern state into review moments, a
// mission, and, when a coach service is wired, conversational output.
func (p *Pipeline) surfaceCoaching(ctx context.Context, playerID int64, req Request, report *Report) error {
	patterns, err := p.store.Patterns(ctx, playerID)
	if err != nil {
		return fmt.Errorf("loading patterns: %w", err)
	}
	report.Patterns = patterns

	states, err := p.store.States(ctx, playerID)
	if err != nil {
		return fmt.Errorf("loading pattern states: %w", err)
	}
	priorityKey := pattern.PriorityKey(states)
	report.PriorityPattern = priorityKey

	var priority *store.PatternRow
	for i := range patterns {
		if patterns[i].Key == priorityKey {
			priority = &patterns[i]
			break
		}
	}

	deaths, err := p.store.RecentDeaths(ctx, playerID, 20)
	if err != nil {
		return fmt.Errorf("loading recent deaths: %w", err)
	}

	if priority != nil {
		review := coach.SelectReviewDeaths(deaths, priority.State.SampleDeathIDs, 3)
		for _, d := range review {
			patternID := priority.ID
			if _, err := p.store.CreateVODMoment(ctx, &store.VODMoment{
				PlayerID:      playerID,
				DeathID:       d.ID,
				PatternID:     &patternID,
				CoachQuestion: coach.ReviewQuestion(d),
			}); err != nil {
				return fmt.Errorf("queueing review moment: %w", err)
			}
			report.ReviewMoments++
		}

		active, err := p.store.ActiveMissions(ctx, playerID)
		if err != nil {
			return fmt.Errorf("checking missions: %w", err)
		}
		if len(active) == 0 {
			mission := coach.MissionFor(playerID, *priority)
			if _, err := p.store.CreateMission(ctx, mission); err != nil {
				return fmt.Errorf("creating mission: %w", err)
			}
			report.Mission = mission.Description
		}
	}

	if p.coach != nil {
		player := &store.Player{
			ID:           playerID,
			GameName:     req.GameName,
			TagLine:      req.TagLine,
			Platform:     req.Platform,
			RankTier:     report.RankTier,
			RankDivision: report.RankDivision,
		}
		payload := coach.BuildPayload(player, coach.ParseIntent(req.Intent), patterns, deaths)
		resp, err := p.coach.Generate(ctx, payload)
		if err != nil {
			return fmt.Errorf("generating coaching text: %w", err)
		}
		report.Opener = resp.Opener
		report.Insights = resp.Insights
	}
	return nil
}

func (p *Pipeline) recordSession(ctx context.Context, playerID int64, req Request, report *Report) {
	discussed := make([]string, 0, len(report.Patterns))
	for _, row := range report.Patterns {
		if row.State.Status == pattern.StatusActive {
			discussed = append(discussed, string(row.Key))
		}
	}
	if _, err := p.store.RecordSession(ctx, &store.CoachingSession{
		PlayerID:          playerID,
		RunID:             report.RunID,
		FocusArea:         string(coach.ParseIntent(req.Intent)),
		MatchesAnalyzed:   report.MatchesAnalyzed,
		PatternsDiscussed: discussed,
		Insights:          report.Insights,
	}); err != nil {
		log.Printf("[Analyzer] failed to record session %s: %v", report.RunID, err)
	}
}

func (p *Pipeline) markSeen(matchID string) {
	p.seenMu.Lock()
	p.seen.AddString(matchID)
	p.seenMu.Unlock()
}

// Seen reports whether this process already confirmed the match as
// processed. May return a false positive.
func (p *Pipeline) Seen(matchID string) bool {
	p.seenMu.Lock()
	defer p.seenMu.Unlock()
	return p.seen.TestString(matchID)
}

// CacheHits reports how many payloads the cache served this process.
func (p *Pipeline) CacheHits() int64 { return p.cacheHits.Load() }

// MatchesFetched reports how many payloads came from the API this process.
func (p *Pipeline) MatchesFetched() int64 { return p.matchesFetched.Load() }
