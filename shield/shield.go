// Package shield provides the HTTP middleware every public page of the site
// goes through: security headers, rate limiting, body limits, request
// tracing, flash messages, HEAD handling, maintenance mode and panic
// recovery.
//
// Usage:
//
//	r := chi.NewRouter()
//	r.Use(shield.Recover)
//	r.Use(shield.SecurityHeaders(shield.DefaultHeaders()))
//	r.Use(shield.MaxFormBody(64 * 1024))
//	r.Use(shield.RequestContext(false))
//	r.Use(shield.NewRateLimiter(db).Middleware)
//	r.Use(shield.Flash)
//	r.Use(shield.HeadToGet)
//
// Or apply the default stack in one call:
//
//	st := shield.DefaultStack(db, shield.Options{HSTS: true})
//	st.Start(done)
//	for _, mw := range st.Middleware {
//	    r.Use(mw)
//	}
package shield

import (
	"context"
	"database/sql"
	"net/http"
)

type contextKey string

const (
	// LoggerKey is the context key for the per-request structured logger.
	LoggerKey contextKey = "shield_logger"

	// FlashKey is the context key for flash messages.
	FlashKey contextKey = "shield_flash"
)

// FlashMessage represents a one-time notification shown to the user.
type FlashMessage struct {
	Type    string // FlashSuccess or FlashError
	Message string
}

// GetFlash retrieves the flash message from the request context.
func GetFlash(ctx context.Context) *FlashMessage {
	v, _ := ctx.Value(FlashKey).(*FlashMessage)
	return v
}

// Options tunes DefaultStack.
type Options struct {
	// HSTS adds Strict-Transport-Security. Enable only behind TLS.
	HSTS bool
	// MaxFormBytes caps form-encoded bodies. Default: 64 KiB.
	MaxFormBytes int64
	// TrustProxy takes the client address from X-Forwarded-For. Enable only
	// behind a reverse proxy that sets it.
	TrustProxy bool
}

// Stack is the assembled middleware chain plus the handles that need a
// background reloader.
type Stack struct {
	Middleware  []func(http.Handler) http.Handler
	Maintenance *MaintenanceMode
	RateLimiter *RateLimiter
}

// Start runs the maintenance and rate limit reloaders until done is closed.
func (s *Stack) Start(done <-chan struct{}) {
	s.Maintenance.StartReloader(done)
	s.RateLimiter.StartReloader(done)
}

// DefaultStack returns the standard middleware stack for the public site.
// Order: Recover → Maintenance → HeadToGet → SecurityHeaders → MaxFormBody →
// RequestContext → RateLimiter → Flash. Health checks and static assets bypass
// maintenance and rate limiting.
func DefaultStack(db *sql.DB, opts Options) *Stack {
	if opts.MaxFormBytes <= 0 {
		opts.MaxFormBytes = 64 * 1024
	}
	headers := DefaultHeaders()
	if opts.HSTS {
		headers.HSTS = DefaultHSTS
	}
	rl := NewRateLimiter(db, "/healthz", "/static/")
	mm := NewMaintenanceMode(db, "/healthz", "/static/")
	return &Stack{
		Middleware: []func(http.Handler) http.Handler{
			Recover,
			mm.Middleware,
			HeadToGet,
			SecurityHeaders(headers),
			MaxFormBody(opts.MaxFormBytes),
			RequestContext(opts.TrustProxy),
			rl.Middleware,
			Flash,
		},
		Maintenance: mm,
		RateLimiter: rl,
	}
}
