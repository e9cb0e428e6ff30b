package httpmiddleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/jx"
)

// RateLimitConfig configures the fixed-window limiter.
type RateLimitConfig struct {
	// Max requests per key and window. Zero or less disables limiting.
	Max int
	// Window length.
	Window time.Duration
	// KeyFunc derives the limiter key. Nil means the client IP.
	KeyFunc func(*http.Request) string
}

type window struct {
	start time.Time
	count int
}

type limiter struct {
	cfg RateLimitConfig
	now func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientIP
	}
	return &limiter{
		cfg:     cfg,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// take counts one request for key and reports the remaining budget, the end
// of the current window and whether the request fits.
func (l *limiter) take(key string) (remaining int, reset time.Time, ok bool) {
	now := l.now()
	start := now.Truncate(l.cfg.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	w, found := l.windows[key]
	if !found || !w.start.Equal(start) {
		w = &window{start: start}
		l.windows[key] = w
	}
	reset = start.Add(l.cfg.Window)

	if w.count >= l.cfg.Max {
		return 0, reset, false
	}
	w.count++
	return l.cfg.Max - w.count, reset, true
}

// evict drops windows that ended before now.
func (l *limiter) evict() {
	start := l.now().Truncate(l.cfg.Window)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.windows {
		if w.start.Before(start) {
			delete(l.windows, key)
		}
	}
}

func (l *limiter) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.Window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evict()
		}
	}
}

// RateLimit limits requests per key in fixed windows and answers 429 once a
// key exhausted its window. Stale windows are evicted until ctx is done.
func RateLimit(ctx context.Context, cfg RateLimitConfig) Middleware {
	if cfg.Max <= 0 || cfg.Window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	l := newLimiter(cfg)
	go l.evictLoop(ctx)
	return l.middleware
}

func (l *limiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remaining, reset, ok := l.take(l.cfg.KeyFunc(r))

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Max))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
		if ok {
			next.ServeHTTP(w, r)
			return
		}

		retry := int(reset.Sub(l.now()).Round(time.Second) / time.Second)
		if retry < 1 {
			retry = 1
		}
		h.Set("Retry-After", strconv.Itoa(retry))
		writeTooMany(w, r)
	})
}

func writeTooMany(w http.ResponseWriter, r *http.Request) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ObjStart()
	e.FieldStart("path")
	e.Str(r.URL.Path)
	e.FieldStart("status")
	e.Int(http.StatusTooManyRequests)
	e.FieldStart("error")
	e.Str(http.StatusText(http.StatusTooManyRequests))
	e.FieldStart("message")
	e.Str("rate limit exceeded")
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write(e.Bytes())
}

// ClientIP returns the first X-Forwarded-For hop, X-Real-IP or the remote
// host, in that order.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
