package riot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testLimiter() *Limiter {
	return NewLimiter(100, 1000, time.Second)
}

func testClient(t *testing.T, serverURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBaseURLs(serverURL, serverURL)}, opts...)
	c, err := NewClient("RGAPI-test-key", "na1", testLimiter(), opts...)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	// Don't actually sleep between retries in tests; record instead.
	c.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return c
}

// TestClient_RetryAfterHonored tests that a 429 with Retry-After causes the
// client to wait at least the advertised duration before retrying, and that
// the retried call succeeds.
func TestClient_RetryAfterHonored(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"puuid":"abc","gameName":"Player","tagLine":"BR1"}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	var waited time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		waited += d
		return nil
	}

	account, err := c.AccountByRiotID(context.Background(), "Player", "BR1")
	if err != nil {
		t.Fatalf("Expected success after retry, got: %v", err)
	}
	if account.PUUID != "abc" {
		t.Errorf("Expected puuid abc, got %q", account.PUUID)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("Expected 2 requests, got %d", got)
	}
	if waited < 2*time.Second {
		t.Errorf("Expected to wait at least 2s per Retry-After, waited %s", waited)
	}
}

// TestClient_RateLimitRetriesExhausted tests that persistent 429s end in
// ErrRateLimited instead of retrying forever.
func TestClient_RateLimitRetriesExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := testClient(t, server.URL, WithRetries(2, 2))

	_, err := c.Match(context.Background(), "BR1_123")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Expected ErrRateLimited, got: %v", err)
	}
	// Initial attempt plus two retries.
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected 3 requests, got %d", got)
	}
}

// TestClient_ServerErrorRetried tests the smaller 5xx retry budget and the
// ErrUpstreamUnavailable terminal error.
func TestClient_ServerErrorRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := testClient(t, server.URL, WithRetries(3, 1))

	_, err := c.Timeline(context.Background(), "BR1_123")
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("Expected ErrUpstreamUnavailable, got: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("Expected 2 requests (1 retry), got %d", got)
	}
}

// TestClient_ServerErrorThenSuccess tests that a transient 5xx recovers.
func TestClient_ServerErrorThenSuccess(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`["BR1_1","BR1_2"]`))
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	ids, err := c.MatchIDs(context.Background(), "puuid", 0, 20, 420)
	if err != nil {
		t.Fatalf("Expected success after retry, got: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 match IDs, got %d", len(ids))
	}
}

// TestClient_NotFound tests that 404 maps to ErrNotFound without retries.
func TestClient_NotFound(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":{"message":"Data not found","status_code":404}}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	_, err := c.AccountByRiotID(context.Background(), "Ghost", "0000")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("404 should not be retried, got %d requests", got)
	}
}

// TestClient_InvalidCredentials tests that 403 maps to the fatal
// ErrInvalidCredentials and exposes the raw status via APIError.
func TestClient_InvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	_, err := c.SummonerByPUUID(context.Background(), "puuid")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Expected ErrInvalidCredentials, got: %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("Expected an *APIError in the chain")
	}
	if apiErr.StatusCode != 403 {
		t.Errorf("Expected status 403, got %d", apiErr.StatusCode)
	}
}

// TestClient_TokenHeaderSet tests that every request carries the API key.
func TestClient_TokenHeaderSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Riot-Token") != "RGAPI-test-key" {
			t.Errorf("Expected X-Riot-Token header, got %q", r.Header.Get("X-Riot-Token"))
		}
		w.Write([]byte(`{"puuid":"p","gameName":"g","tagLine":"t"}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	if _, err := c.AccountByRiotID(context.Background(), "g", "t"); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
}

// TestClient_UnknownPlatform tests that construction fails fast on an
// unroutable platform code.
func TestClient_UnknownPlatform(t *testing.T) {
	_, err := NewClient("RGAPI-test-key", "moon1", testLimiter())
	if !errors.Is(err, ErrInvalidRegion) {
		t.Fatalf("Expected ErrInvalidRegion, got: %v", err)
	}
}

// TestClient_ValidateKey tests the status-endpoint probe.
func TestClient_ValidateKey(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"BR1","name":"Brazil"}`))
		}))
		defer server.Close()

		c := testClient(t, server.URL)
		if err := c.ValidateKey(context.Background()); err != nil {
			t.Errorf("Expected valid key, got: %v", err)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		c := testClient(t, server.URL)
		err := c.ValidateKey(context.Background())
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got: %v", err)
		}
	})
}

func TestRealm(t *testing.T) {
	tests := []struct {
		platform string
		realm    string
	}{
		{"na1", "americas"},
		{"br1", "americas"},
		{"euw1", "europe"},
		{"tr1", "europe"},
		{"kr", "asia"},
		{"jp1", "asia"},
		{"oc1", "sea"},
		{"vn2", "sea"},
	}

	for _, tt := range tests {
		realm, err := Realm(tt.platform)
		if err != nil {
			t.Errorf("Realm(%q) failed: %v", tt.platform, err)
			continue
		}
		if realm != tt.realm {
			t.Errorf("Realm(%q) = %q, expected %q", tt.platform, realm, tt.realm)
		}
	}

	if _, err := Realm("garena"); !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("Expected ErrInvalidRegion for unknown platform, got: %v", err)
	}
}
