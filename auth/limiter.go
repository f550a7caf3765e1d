package auth

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// failureLimiter keeps one token bucket per client. An attempt holds a slot
// from the time its client passes the check until it finishes, so attempts in
// flight can never outnumber the tokens left. A rejected token spends its slot;
// requests without a token and successful attempts give it back.
type failureLimiter struct {
	buckets sync.Map // map[string]*bucket
	rate    rate.Limit
	burst   int

	mu          sync.Mutex
	lastCleanup time.Time
}

type bucket struct {
	mu       sync.Mutex
	lim      *rate.Limiter
	inFlight int
}

// slot is held by one attempt. A nil slot belongs to an attempt the limiter
// does not track.
type slot struct {
	b *bucket
}

func newFailureLimiter(r rate.Limit, burst int) *failureLimiter {
	return &failureLimiter{rate: r, burst: burst, lastCleanup: time.Now()}
}

// acquire takes a slot for key, or reports false when every remaining token is
// already spent or held by another attempt.
func (fl *failureLimiter) acquire(key string) (*slot, bool) {
	b := fl.get(key)
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lim.Tokens() < float64(b.inFlight+1) {
		return nil, false
	}
	b.inFlight++
	return &slot{b: b}, true
}

// release ends the attempt. A failed attempt spends a token.
func (s *slot) release(failed bool) {
	if s == nil {
		return
	}
	s.b.mu.Lock()
	defer s.b.mu.Unlock()

	s.b.inFlight--
	if failed {
		s.b.lim.Allow()
	}
}

// retryAfter returns how long until key may try again, rounded up to a whole
// second.
func (fl *failureLimiter) retryAfter(key string) time.Duration {
	v, ok := fl.buckets.Load(key)
	if !ok {
		return 0
	}
	b := v.(*bucket)
	b.mu.Lock()
	defer b.mu.Unlock()

	res := b.lim.Reserve()
	delay := res.Delay()
	res.Cancel()
	return max(delay.Round(time.Second), time.Second)
}

func (fl *failureLimiter) get(key string) *bucket {
	if v, ok := fl.buckets.Load(key); ok {
		return v.(*bucket)
	}
	actual, loaded := fl.buckets.LoadOrStore(key, &bucket{lim: rate.NewLimiter(fl.rate, fl.burst)})
	if !loaded {
		fl.maybeCleanup()
	}
	return actual.(*bucket)
}

// maybeCleanup drops idle buckets that have refilled, at most once every five
// minutes.
func (fl *failureLimiter) maybeCleanup() {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if time.Since(fl.lastCleanup) < 5*time.Minute {
		return
	}
	fl.lastCleanup = time.Now()

	fl.buckets.Range(func(key, value any) bool {
		b := value.(*bucket)
		b.mu.Lock()
		idle := b.inFlight == 0 && b.lim.Tokens() >= float64(fl.burst)
		b.mu.Unlock()
		if idle {
			fl.buckets.Delete(key)
		}
		return true
	})
}

// clientAddress returns the address the failure limiter is keyed on. Proxy
// headers are consulted only when trustProxy is set.
func clientAddress(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if idx := strings.Index(xff, ","); idx > 0 {
				return strings.TrimSpace(xff[:idx])
			}
			return strings.TrimSpace(xff)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	return hostOnly(r.RemoteAddr)
}

func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
