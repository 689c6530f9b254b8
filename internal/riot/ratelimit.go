package riot

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	shortWindowSpan = time.Second
	longWindowSpan  = 2 * time.Minute

	// Extra margin added to computed waits so a request never lands a few
	// milliseconds before its window slot actually opens.
	windowMargin = 100 * time.Millisecond
)

// Limiter enforces the dual sliding-window budget the Riot API applies per
// key: a per-second ceiling and a per-two-minute ceiling. A single Limiter
// must be shared by every client using the same key, including across
// goroutines; Acquire is safe for concurrent use.
type Limiter struct {
	perSecond int
	per2Min   int
	maxWait   time.Duration

	mu          sync.Mutex
	shortWindow []time.Time
	longWindow  []time.Time

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLimiter creates a limiter with the given ceilings. maxWait bounds how
// long a single Acquire may block before giving up with ErrRateLimitTimeout;
// zero means wait forever.
func NewLimiter(perSecond, per2Min int, maxWait time.Duration) *Limiter {
	return &Limiter{
		perSecond:   perSecond,
		per2Min:     per2Min,
		maxWait:     maxWait,
		shortWindow: make([]time.Time, 0, perSecond),
		longWindow:  make([]time.Time, 0, per2Min),
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Acquire blocks until both windows admit one more request, then records it.
// It returns ErrRateLimitTimeout if the wait would exceed the configured
// ceiling, or the context error if ctx is cancelled first.
func (l *Limiter) Acquire(ctx context.Context) error {
	deadline := time.Time{}
	if l.maxWait > 0 {
		deadline = time.Now().Add(l.maxWait)
	}

	for {
		l.mu.Lock()
		now := time.Now()
		l.shortWindow = prune(l.shortWindow, now.Add(-shortWindowSpan))
		l.longWindow = prune(l.longWindow, now.Add(-longWindowSpan))

		var wait time.Duration
		switch {
		case len(l.shortWindow) >= l.perSecond:
			wait = l.shortWindow[0].Add(shortWindowSpan).Sub(now) + windowMargin
		case len(l.longWindow) >= l.per2Min:
			wait = l.longWindow[0].Add(longWindowSpan).Sub(now) + windowMargin
		default:
			l.shortWindow = append(l.shortWindow, now)
			l.longWindow = append(l.longWindow, now)
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		if !deadline.IsZero() && time.Now().Add(wait).After(deadline) {
			return fmt.Errorf("%w after %s", ErrRateLimitTimeout, l.maxWait)
		}
		if wait > time.Second {
			log.Printf("[RateLimit] window full, waiting %.1fs", wait.Seconds())
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// SyncFromHeaders reconciles local counters with the authoritative
// X-App-Rate-Limit-Count header ("1:1,45:120"). If the server has seen more
// requests in a window than we recorded, backfill the difference so the next
// Acquire waits instead of tripping a real 429. Counts lower than ours are
// ignored; local bookkeeping is the conservative side.
func (l *Limiter) SyncFromHeaders(h http.Header) {
	counts := h.Get("X-App-Rate-Limit-Count")
	if counts == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	l.shortWindow = prune(l.shortWindow, now.Add(-shortWindowSpan))
	l.longWindow = prune(l.longWindow, now.Add(-longWindowSpan))

	for _, part := range strings.Split(counts, ",") {
		var count, span int
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d:%d", &count, &span); err != nil {
			continue
		}
		switch {
		case span <= 1:
			for len(l.shortWindow) < count && len(l.shortWindow) < l.perSecond {
				l.shortWindow = append(l.shortWindow, now)
			}
		case span <= int(longWindowSpan/time.Second):
			for len(l.longWindow) < count && len(l.longWindow) < l.per2Min {
				l.longWindow = append(l.longWindow, now)
			}
		}
	}
}

// InFlight returns the current occupancy of both windows, for logging.
func (l *Limiter) InFlight() (short, long int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	l.shortWindow = prune(l.shortWindow, now.Add(-shortWindowSpan))
	l.longWindow = prune(l.longWindow, now.Add(-longWindowSpan))
	return len(l.shortWindow), len(l.longWindow)
}

func prune(window []time.Time, cutoff time.Time) []time.Time {
	// Entries are appended in order, so find the first survivor and cut.
	i := 0
	for i < len(window) && !window[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return window
	}
	return append(window[:0], window[i:]...)
}

// parseRetryAfter reads a Retry-After header in seconds, falling back to
// the given default when absent or malformed.
func parseRetryAfter(h http.Header, fallback time.Duration) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
