package shield

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig is one row of the rate_limits table: at most MaxRequests
// per client address in each fixed window of WindowSeconds.
type RateLimitConfig struct {
	MaxRequests   int
	WindowSeconds int
	Enabled       bool
}

func (c RateLimitConfig) window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// window counts the requests of one client to one endpoint.
type window struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// take counts one request. It reports whether the request fits and, if
// not, how long until the window resets.
func (w *window) take(now time.Time, cfg RateLimitConfig) (bool, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !now.Before(w.resetAt) {
		w.count = 0
		w.resetAt = now.Add(cfg.window())
	}
	w.count++
	if w.count <= cfg.MaxRequests {
		return true, 0
	}
	return false, w.resetAt.Sub(now)
}

func (w *window) stale(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !now.Before(w.resetAt)
}

// RateLimiter limits requests per client address and endpoint. Endpoints
// are "METHOD /path" keys from the rate_limits table (see Schema); requests
// to endpoints without an enabled rule are never limited.
type RateLimiter struct {
	db      *sql.DB
	mu      sync.RWMutex
	rules   map[string]RateLimitConfig
	windows sync.Map // "ip endpoint" -> *window
	exclude []string
	now     func() time.Time

	reloadEvery time.Duration
}

// NewRateLimiter loads the rules from db. Paths starting with one of
// excludePrefixes bypass the limiter.
func NewRateLimiter(db *sql.DB, excludePrefixes ...string) *RateLimiter {
	rl := &RateLimiter{
		db:      db,
		rules:   make(map[string]RateLimitConfig),
		exclude: excludePrefixes,
		now:     time.Now,

		reloadEvery: reloadInterval,
	}
	rl.reload()
	return rl
}

// StartReloader re-reads the rules every 5 seconds and drops stale windows
// every five minutes, until done is closed.
func (rl *RateLimiter) StartReloader(done <-chan struct{}) {
	reloadTick := time.NewTicker(rl.reloadEvery)
	gcTick := time.NewTicker(5 * time.Minute)
	go func() {
		defer reloadTick.Stop()
		defer gcTick.Stop()
		for {
			select {
			case <-done:
				return
			case <-reloadTick.C:
				rl.reload()
			case <-gcTick.C:
				rl.gc()
			}
		}
	}()
}

func (rl *RateLimiter) reload() {
	rows, err := rl.db.Query(`SELECT endpoint, max_requests, window_seconds, enabled FROM rate_limits`)
	if err != nil {
		slog.Warn("ratelimit: reload rules", "error", err)
		return
	}
	defer rows.Close()

	rules := make(map[string]RateLimitConfig)
	for rows.Next() {
		var endpoint string
		var cfg RateLimitConfig
		if err := rows.Scan(&endpoint, &cfg.MaxRequests, &cfg.WindowSeconds, &cfg.Enabled); err != nil {
			slog.Warn("ratelimit: skip rule", "error", err)
			continue
		}
		if cfg.WindowSeconds <= 0 {
			slog.Warn("ratelimit: skip rule without window", "endpoint", endpoint)
			continue
		}
		rules[endpoint] = cfg
	}

	rl.mu.Lock()
	rl.rules = rules
	rl.mu.Unlock()
	slog.Debug("ratelimit: rules reloaded", "count", len(rules))
}

func (rl *RateLimiter) gc() {
	now := rl.now()
	rl.windows.Range(func(key, value any) bool {
		if value.(*window).stale(now) {
			rl.windows.Delete(key)
		}
		return true
	})
}

// Allow counts one request from ip to endpoint ("METHOD /path") and reports
// whether it fits. When it does not, retryAfter is the time left in the
// current window.
func (rl *RateLimiter) Allow(ip, endpoint string) (ok bool, retryAfter time.Duration) {
	rl.mu.RLock()
	cfg, found := rl.rules[endpoint]
	rl.mu.RUnlock()
	if !found || !cfg.Enabled {
		return true, 0
	}
	v, _ := rl.windows.LoadOrStore(ip+" "+endpoint, &window{})
	return v.(*window).take(rl.now(), cfg)
}

// Middleware enforces the limits. Refused machine requests (/admin/, /mcp)
// get a JSON 429; refused page requests are sent back to the page with a
// flash message. Both carry Retry-After.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range rl.exclude {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		endpoint := r.Method + " " + r.URL.Path
		ip := ExtractIP(r)
		ok, retryAfter := rl.Allow(ip, endpoint)
		if ok {
			next.ServeHTTP(w, r)
			return
		}

		GetLogger(r.Context()).Warn("ratelimit: request refused", "ip", ip, "endpoint", endpoint)
		secs := int(retryAfter.Round(time.Second) / time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))

		if isMachinePath(r.URL.Path) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
			return
		}
		SetFlash(w, FlashError, "Too many requests. Please wait a few minutes and try again.")
		http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
	})
}

func isMachinePath(path string) bool {
	return strings.HasPrefix(path, "/admin/") || path == "/mcp" || strings.HasPrefix(path, "/mcp/")
}
