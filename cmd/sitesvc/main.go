// Entry point for the public website: chi router, shield stack, SQLite
// review-request store, Basic-auth admin listing, optional MCP over HTTP.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/simplecybertech/web/contact"
	"github.com/simplecybertech/web/content"
	"github.com/simplecybertech/web/dbopen"
	"github.com/simplecybertech/web/observability"
	"github.com/simplecybertech/web/shield"
	"github.com/simplecybertech/web/site"
	"github.com/simplecybertech/web/website"
)

func main() {
	// A missing .env is normal in production.
	_ = godotenv.Load()

	port := env("PORT", "8080")
	logLevel := env("LOG_LEVEL", "info")

	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := site.LoadFile(env("SITE_CONFIG", "config/site.yaml"))
	if err != nil {
		slog.Error("site config", "error", err)
		os.Exit(1)
	}
	lib, err := content.Load()
	if err != nil {
		slog.Error("content", "error", err)
		os.Exit(1)
	}
	for _, terms := range lib.Glossary.SlugCollisions() {
		slog.Warn("glossary terms share a fragment id", "terms", terms)
	}

	db, err := dbopen.Open(env("DATA_DB", "data/site.db"),
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(shield.Schema),
		dbopen.WithSchema(observability.Schema),
	)
	if err != nil {
		slog.Error("data db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	audit := observability.NewAuditLogger(db, 1000, observability.WithLogger(logger))
	defer audit.Close()
	retention, err := strconv.Atoi(env("AUDIT_RETENTION_DAYS", "90"))
	if err != nil {
		slog.Error("AUDIT_RETENTION_DAYS", "error", err)
		os.Exit(1)
	}
	audit.StartRetention(ctx, retention)

	desk, err := contact.New(contact.Config{DB: db})
	if err != nil {
		slog.Error("contact desk", "error", err)
		os.Exit(1)
	}

	stack := shield.DefaultStack(db, shield.Options{
		HSTS:       env("HSTS", "") == "1",
		TrustProxy: env("TRUST_PROXY", "") == "1",
	})
	stack.Maintenance.SetPhone(cfg.Business.TelephoneDisplay, cfg.Business.Telephone)
	stack.Start(ctx.Done())

	web, err := website.New(website.Config{
		Site:    cfg,
		Content: lib,
		Logger:  logger,
		Submit:  audit.HTTP("contact", "submit")(http.HandlerFunc(desk.HandleSubmit)).ServeHTTP,
		Audit:   audit,
	})
	if err != nil {
		slog.Error("website", "error", err)
		os.Exit(1)
	}

	adminUser := env("ADMIN_USER", "")
	adminHash := env("ADMIN_PASSWORD_HASH", "")
	if adminUser == "" || adminHash == "" {
		slog.Warn("ADMIN_USER or ADMIN_PASSWORD_HASH unset, the admin API refuses every request")
	}

	r := newRouter(app{
		db:        db,
		stack:     stack,
		web:       web,
		desk:      desk,
		audit:     audit,
		adminUser: adminUser,
		adminHash: adminHash,
		mcp:       env("MCP_HTTP", "") == "1",
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		slog.Error("listen", "addr", srv.Addr, "error", err)
		os.Exit(1)
	}
	slog.Info("website starting", "port", port, "base_url", cfg.Site.BaseURL)
	if err := serve(ctx, srv, ln, 10*time.Second); err != nil {
		slog.Error("server", "error", err)
		audit.Close()
		db.Close()
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// serve runs srv on ln until ctx is done, then stops accepting and waits up
// to timeout for in-flight requests. It returns only once no handler is
// running, so the caller may close what the handlers use.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	select {
	case err := <-served:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-served; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// app is everything newRouter wires together.
type app struct {
	db        *sql.DB
	stack     *shield.Stack
	web       *website.Website
	desk      *contact.Desk
	audit     *observability.AuditLogger
	adminUser string
	adminHash string
	mcp       bool
}

func newRouter(a app) chi.Router {
	r := chi.NewRouter()
	for _, mw := range a.stack.Middleware {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.db.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(a.audit.HTTP("admin", "read"))
		r.Use(contact.BasicAuth("admin", a.adminUser, a.adminHash))
		r.Mount("/requests", a.desk.AdminHandler())
		r.Mount("/audit", a.audit.AdminHandler())
	})

	if a.mcp {
		mcpSrv := mcp.NewServer(&mcp.Implementation{Name: "simplecybertech-web", Version: "1.0.0"}, nil)
		a.web.RegisterMCP(mcpSrv)
		r.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return mcpSrv }, nil))
	}

	a.web.Routes(r)
	return r
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
