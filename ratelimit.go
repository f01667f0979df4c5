package endpoint

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the RateLimit middleware.
type RateLimitConfig struct {
	Rate            float64                      // requests per second
	Burst           int                          // max burst
	KeyFunc         func(r *http.Request) string // default: remote IP
	OnLimit         ErrorHandler                 // default: WriteProblem with 429
	CleanupInterval time.Duration                // how often to prune idle limiters (default: 1m)
	MaxIdle         time.Duration                // remove limiters idle longer than this (default: 5m)
}

// ErrRateLimited is passed to OnLimit when a request is rejected.
var ErrRateLimited = Error(http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))

// RateLimit returns middleware that applies per-key rate limiting. Attached
// to a route with WithMiddleware, rejected requests never create a request
// scope or construct a handler.
func RateLimit(cfg RateLimitConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = remoteHost
	}
	if cfg.OnLimit == nil {
		cfg.OnLimit = WriteProblem
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = 5 * time.Minute
	}

	lim := &limiterSet{
		cfg:      cfg,
		limiters: make(map[string]*limiterEntry),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.allow(cfg.KeyFunc(r), time.Now()) {
				w.Header().Set("Retry-After", retryAfter(cfg.Rate))
				cfg.OnLimit(w, r, ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limiterSet struct {
	cfg RateLimitConfig

	mu          sync.Mutex
	limiters    map[string]*limiterEntry
	lastCleanup time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func (s *limiterSet) allow(key string, now time.Time) bool {
	s.mu.Lock()

	if now.Sub(s.lastCleanup) >= s.cfg.CleanupInterval {
		for k, e := range s.limiters {
			if now.Sub(e.lastSeen) > s.cfg.MaxIdle {
				delete(s.limiters, k)
			}
		}
		s.lastCleanup = now
	}

	entry, ok := s.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(s.cfg.Rate), s.cfg.Burst)}
		s.limiters[key] = entry
	}
	entry.lastSeen = now
	s.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// retryAfter is the whole number of seconds until one token is available,
// never less than one.
func retryAfter(perSecond float64) string {
	if perSecond <= 0 {
		return "1"
	}
	return strconv.Itoa(max(1, int(math.Ceil(1/perSecond))))
}
