package shield

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const (
	defaultMaintenanceMessage = "We are performing scheduled maintenance. Please check back shortly."
	defaultRetryAfter         = 5 * time.Minute

	// reloadInterval is how often operator edits to the maintenance row and
	// the rate_limits table take effect.
	reloadInterval = 5 * time.Second
)

// maintenanceState is one snapshot of the maintenance row.
type maintenanceState struct {
	active  bool
	message string
	endsAt  time.Time // zero = until switched off
}

// MaintenanceMode answers 503 while the maintenance row (see Schema) is
// active. The row is cached and re-read every few seconds, so operators
// toggle it with the sqlite3 shell while the site runs:
//
//	UPDATE maintenance SET active = 1, message = '...', ends_at = strftime('%s','now','+30 minutes');
//
// A set ends_at ends maintenance on its own and drives Retry-After. A
// missing table or row means maintenance is off.
type MaintenanceMode struct {
	db      *sql.DB
	state   atomic.Pointer[maintenanceState]
	exclude []string
	phone   atomic.Pointer[[2]string] // display, tel
	now     func() time.Time

	reloadEvery time.Duration
}

// NewMaintenanceMode reads the maintenance row from db. Paths starting with
// one of excludePrefixes are never blocked.
func NewMaintenanceMode(db *sql.DB, excludePrefixes ...string) *MaintenanceMode {
	m := &MaintenanceMode{
		db:      db,
		exclude: excludePrefixes,
		now:     time.Now,

		reloadEvery: reloadInterval,
	}
	m.state.Store(&maintenanceState{message: defaultMaintenanceMessage})
	m.reload()
	return m
}

// SetPhone adds a "call us" line to the maintenance page. tel is the
// dialable form, e.g. +1-949-520-6805.
func (m *MaintenanceMode) SetPhone(display, tel string) {
	m.phone.Store(&[2]string{display, tel})
}

// Active reports whether requests are currently blocked.
func (m *MaintenanceMode) Active() bool {
	s := m.state.Load()
	return s.active && (s.endsAt.IsZero() || m.now().Before(s.endsAt))
}

// Message returns the current maintenance message.
func (m *MaintenanceMode) Message() string {
	return m.state.Load().message
}

// StartReloader re-reads the maintenance row every 5 seconds until done is
// closed.
func (m *MaintenanceMode) StartReloader(done <-chan struct{}) {
	tick := time.NewTicker(m.reloadEvery)
	go func() {
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				m.reload()
			}
		}
	}()
}

func (m *MaintenanceMode) reload() {
	var (
		active  bool
		message string
		endsAt  sql.NullInt64
	)
	err := m.db.QueryRow(`SELECT active, message, ends_at FROM maintenance WHERE id = 1`).Scan(&active, &message, &endsAt)
	if err != nil {
		if m.state.Load().active {
			slog.Info("maintenance: row unreadable, mode off", "error", err)
		}
		m.state.Store(&maintenanceState{message: defaultMaintenanceMessage})
		return
	}

	next := &maintenanceState{active: active, message: message}
	if next.message == "" {
		next.message = defaultMaintenanceMessage
	}
	if endsAt.Valid && endsAt.Int64 > 0 {
		next.endsAt = time.Unix(endsAt.Int64, 0)
	}
	prev := m.state.Swap(next)

	switch {
	case next.active && !prev.active:
		slog.Warn("maintenance: mode enabled", "message", next.message, "ends_at", next.endsAt)
	case !next.active && prev.active:
		slog.Info("maintenance: mode disabled")
	}
}

func (m *MaintenanceMode) retryAfter() time.Duration {
	s := m.state.Load()
	if s.endsAt.IsZero() {
		return defaultRetryAfter
	}
	return max(s.endsAt.Sub(m.now()), time.Second)
}

// Middleware answers 503 while maintenance is active: an HTML page for
// visitors, JSON for /admin/ and /mcp. Excluded prefixes pass through.
func (m *MaintenanceMode) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Active() {
			next.ServeHTTP(w, r)
			return
		}
		for _, prefix := range m.exclude {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		secs := int(m.retryAfter().Round(time.Second) / time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(secs))

		if isMachinePath(r.URL.Path) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"error": "maintenance", "message": m.Message()})
			return
		}

		var buf bytes.Buffer
		data := maintenancePageData{Message: m.Message()}
		if p := m.phone.Load(); p != nil {
			data.Phone, data.Tel = p[0], template.URL("tel:"+p[1])
		}
		if err := maintenancePage.Execute(&buf, data); err != nil {
			slog.Error("maintenance: render page", "error", err)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		buf.WriteTo(w)
	})
}

type maintenancePageData struct {
	Message string
	Phone   string
	Tel     template.URL
}

var maintenancePage = template.Must(template.New("maintenance").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="robots" content="noindex">
<title>Scheduled maintenance</title>
<style>
  body { font-family: system-ui, sans-serif; display: flex; align-items: center;
         justify-content: center; min-height: 100vh; margin: 0; background: #f8f9fa; color: #333; }
  .box { text-align: center; max-width: 480px; padding: 2rem; }
  h1 { font-size: 1.5rem; margin-bottom: .5rem; }
  p  { color: #666; }
</style>
</head>
<body>
<div class="box">
  <h1>Scheduled maintenance</h1>
  <p>{{.Message}}</p>
  {{- if .Phone}}
  <p>Need help now? Call <a href="{{.Tel}}">{{.Phone}}</a>.</p>
  {{- end}}
</div>
</body>
</html>`))
