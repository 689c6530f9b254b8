package coach

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/GepetoinTraining/lol-ai-coach/internal/store"
)

const (
	defaultClientTimeout = 30 * time.Second

	// Max retries when the generator rate limits us.
	maxGenerateRetries = 3
)

// AnalysisPayload is what the text generator receives: pattern summaries
// and sample death contexts, never raw timelines.
type AnalysisPayload struct {
	GameName string           `json:"gameName"`
	TagLine  string           `json:"tagLine"`
	Intent   Intent           `json:"intent"`
	Patterns []PatternSummary `json:"patterns"`
	Deaths   []DeathSummary   `json:"deaths"`
}

type PatternSummary struct {
	Key            string `json:"key"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	Occurrences    int    `json:"occurrences"`
	GamesSinceLast int    `json:"gamesSinceLast"`
	Status         string `json:"status"`
}

type DeathSummary struct {
	MatchID       string   `json:"matchId"`
	TimestampMS   int      `json:"timestampMs"`
	Phase         string   `json:"phase"`
	Zone          string   `json:"zone"`
	DeathType     string   `json:"deathType"`
	KillerChamp   string   `json:"killerChampion"`
	Assists       []string `json:"assists,omitempty"`
	HadWardNearby bool     `json:"hadWardNearby"`
	GoldDiff      int      `json:"goldDiff"`
}

// GenerateResponse is the generator's output for one session.
type GenerateResponse struct {
	Opener   string `json:"opener"`
	Insights string `json:"insights"`
}

// Client calls the coaching text-generation service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientTimeout sets the request timeout.
func WithClientTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a client for the generator at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultClientTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildPayload assembles the generator payload from stored rows.
func BuildPayload(p *store.Player, intent Intent, patterns []store.PatternRow, deaths []store.StoredDeath) AnalysisPayload {
	payload := AnalysisPayload{
		GameName: p.GameName,
		TagLine:  p.TagLine,
		Intent:   intent,
	}
	for _, row := range patterns {
		payload.Patterns = append(payload.Patterns, PatternSummary{
			Key:            string(row.Key),
			Category:       row.Category,
			Description:    row.Description,
			Occurrences:    row.State.Occurrences,
			GamesSinceLast: row.State.GamesSinceLast,
			Status:         string(row.State.Status),
		})
	}
	for _, d := range deaths {
		payload.Deaths = append(payload.Deaths, DeathSummary{
			MatchID:       d.MatchID,
			TimestampMS:   d.TimestampMS,
			Phase:         string(d.Phase),
			Zone:          string(d.Zone),
			DeathType:     string(d.Type),
			KillerChamp:   d.KillerChampion,
			Assists:       d.AssistingChampions,
			HadWardNearby: d.HadWardNearby,
			GoldDiff:      d.GoldDiff,
		})
	}
	return payload
}

// Generate posts the payload and returns the generated session text,
// retrying on rate limits with the advertised wait.
func (c *Client) Generate(ctx context.Context, payload AnalysisPayload) (*GenerateResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	for attempt := 0; attempt < maxGenerateRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/coach/generate", bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			var out GenerateResponse
			err := json.NewDecoder(resp.Body).Decode(&out)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("failed to decode response: %w", err)
			}
			return &out, nil
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := time.Second
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					waitDuration = time.Duration(seconds) * time.Second
				}
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		return nil, fmt.Errorf("generator request failed with status %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("generator request failed after %d retries", maxGenerateRetries)
}
