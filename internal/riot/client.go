package riot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
)

const (
	defaultTimeout = 30 * time.Second

	// Retry bounds. 429s get the full budget since a Retry-After is an
	// explicit promise the request will succeed later; 5xx gets less.
	defaultMaxRetries429 = 3
	defaultMaxRetries5xx = 2

	defaultRetryAfter = 10 * time.Second
	backoffBase       = time.Second
	backoffCap        = 10 * time.Second

	statusEndpoint = "/lol/status/v4/platform-data"
)

// Client is a rate-limited Riot API client pinned to one platform. All
// requests pass through the shared Limiter before touching the network.
type Client struct {
	apiKey     string
	platform   string
	realmURL   string // americas/europe/asia/sea host: account + match data
	regionURL  string // platform host: summoner + league data
	limiter    *Limiter
	httpClient *http.Client

	maxRetries429 int
	maxRetries5xx int
	retryAfter    time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURLs overrides both API hosts (useful for testing).
func WithBaseURLs(realmURL, regionURL string) Option {
	return func(c *Client) {
		c.realmURL = realmURL
		c.regionURL = regionURL
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetries overrides the retry budgets for 429 and 5xx responses.
func WithRetries(on429, on5xx int) Option {
	return func(c *Client) {
		c.maxRetries429 = on429
		c.maxRetries5xx = on5xx
	}
}

// NewClient creates a client for the given platform. The limiter must be
// shared with every other client using the same key.
func NewClient(apiKey, platform string, limiter *Limiter, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("riot: API key cannot be empty")
	}
	realm, err := Realm(platform)
	if err != nil {
		return nil, err
	}

	c := &Client{
		apiKey:    apiKey,
		platform:  platform,
		realmURL:  fmt.Sprintf("https://%s.api.riotgames.com", realm),
		regionURL: fmt.Sprintf("https://%s.api.riotgames.com", platform),
		limiter:   limiter,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		maxRetries429: defaultMaxRetries429,
		maxRetries5xx: defaultMaxRetries5xx,
		retryAfter:    defaultRetryAfter,
		sleep:         sleepCtx,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Platform returns the platform code this client routes to.
func (c *Client) Platform() string {
	return c.platform
}

// doGet performs one rate-limited GET with retries. 429 retries honor
// Retry-After, 5xx retries back off exponentially, 4xx fails immediately.
func (c *Client) doGet(ctx context.Context, reqURL string, result interface{}) error {
	var retries429, retries5xx int

	for {
		if err := c.limiter.Acquire(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("X-Riot-Token", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("riot: request failed: %w", err)
		}

		c.limiter.SyncFromHeaders(resp.Header)

		switch {
		case resp.StatusCode == http.StatusOK:
			err = json.NewDecoder(resp.Body).Decode(result)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("riot: decoding response: %w", err)
			}
			return nil

		case resp.StatusCode == http.StatusTooManyRequests:
			wait := parseRetryAfter(resp.Header, c.retryAfter)
			resp.Body.Close()
			if retries429 >= c.maxRetries429 {
				return wrapStatus(resp.StatusCode, reqURL)
			}
			retries429++
			log.Printf("[Riot] 429 from API, waiting %s (retry %d/%d)", wait, retries429, c.maxRetries429)
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}

		case resp.StatusCode >= 500:
			resp.Body.Close()
			if retries5xx >= c.maxRetries5xx {
				return wrapStatus(resp.StatusCode, reqURL)
			}
			retries5xx++
			wait := backoffBase << (retries5xx - 1)
			if wait > backoffCap {
				wait = backoffCap
			}
			log.Printf("[Riot] %d from API, retrying in %s (retry %d/%d)", resp.StatusCode, wait, retries5xx, c.maxRetries5xx)
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}

		default:
			resp.Body.Close()
			return wrapStatus(resp.StatusCode, reqURL)
		}
	}
}

// AccountByRiotID resolves a gameName#tagLine pair to an account.
func (c *Client) AccountByRiotID(ctx context.Context, gameName, tagLine string) (*AccountResponse, error) {
	reqURL := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.realmURL, url.PathEscape(gameName), url.PathEscape(tagLine))

	var account AccountResponse
	if err := c.doGet(ctx, reqURL, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// SummonerByPUUID fetches the summoner record on this client's platform.
func (c *Client) SummonerByPUUID(ctx context.Context, puuid string) (*SummonerResponse, error) {
	reqURL := fmt.Sprintf("%s/lol/summoner/v4/summoners/by-puuid/%s", c.regionURL, url.PathEscape(puuid))

	var summoner SummonerResponse
	if err := c.doGet(ctx, reqURL, &summoner); err != nil {
		return nil, err
	}
	return &summoner, nil
}

// LeagueEntries fetches ranked entries for a player.
func (c *Client) LeagueEntries(ctx context.Context, puuid string) ([]LeagueEntryResponse, error) {
	reqURL := fmt.Sprintf("%s/lol/league/v4/entries/by-puuid/%s", c.regionURL, url.PathEscape(puuid))

	var entries []LeagueEntryResponse
	if err := c.doGet(ctx, reqURL, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// MatchIDs fetches match IDs for a player, most recent first. queue filters
// by queue id when positive (420 is ranked solo).
func (c *Client) MatchIDs(ctx context.Context, puuid string, start, count, queue int) ([]string, error) {
	q := url.Values{}
	q.Set("start", fmt.Sprintf("%d", start))
	q.Set("count", fmt.Sprintf("%d", count))
	if queue > 0 {
		q.Set("queue", fmt.Sprintf("%d", queue))
	}
	reqURL := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?%s",
		c.realmURL, url.PathEscape(puuid), q.Encode())

	var matchIDs []string
	if err := c.doGet(ctx, reqURL, &matchIDs); err != nil {
		return nil, err
	}
	return matchIDs, nil
}

// Match fetches full match details.
func (c *Client) Match(ctx context.Context, matchID string) (*MatchResponse, error) {
	reqURL := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.realmURL, url.PathEscape(matchID))

	var match MatchResponse
	if err := c.doGet(ctx, reqURL, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// Timeline fetches the per-minute timeline for a match.
func (c *Client) Timeline(ctx context.Context, matchID string) (*TimelineResponse, error) {
	reqURL := fmt.Sprintf("%s/lol/match/v5/matches/%s/timeline", c.realmURL, url.PathEscape(matchID))

	var timeline TimelineResponse
	if err := c.doGet(ctx, reqURL, &timeline); err != nil {
		return nil, err
	}
	return &timeline, nil
}

// ValidateKey probes the lightweight status endpoint to check the key
// before a run burns rate budget on doomed requests.
func (c *Client) ValidateKey(ctx context.Context) error {
	var ignored map[string]interface{}
	err := c.doGet(ctx, c.regionURL+statusEndpoint, &ignored)
	if errors.Is(err, ErrInvalidCredentials) {
		return err
	}
	if err != nil {
		return fmt.Errorf("riot: key validation inconclusive: %w", err)
	}
	return nil
}
