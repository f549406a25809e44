package shield

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/simplecybertech/web/idgen"
	"github.com/simplecybertech/web/kit"
)

var newTraceID = idgen.NanoID(8)

// RequestContext stamps each request with a short trace id and the client
// address. Both go into the context (kit.WithTraceID, kit.WithRemoteAddr),
// the trace id also into the X-Trace-ID response header, and a logger
// carrying both is stored under LoggerKey.
//
// With trustProxy the client address is the first X-Forwarded-For entry;
// enable it only when a reverse proxy sets that header.
func RequestContext(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := newTraceID()
			ip := clientIP(r, trustProxy)

			ctx := kit.WithTraceID(r.Context(), traceID)
			ctx = kit.WithRemoteAddr(ctx, ip)
			w.Header().Set("X-Trace-ID", traceID)

			logger := slog.Default().With(
				"trace_id", traceID,
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", ip,
			)
			ctx = context.WithValue(ctx, LoggerKey, logger)
			logger.Info("request")

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLogger retrieves the per-request logger from the context.
// Returns slog.Default() if no logger was set.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(LoggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// ExtractIP returns the client address RequestContext resolved, or the host
// part of RemoteAddr when the request did not pass through it.
func ExtractIP(r *http.Request) string {
	if ip := kit.GetRemoteAddr(r.Context()); ip != "" {
		return ip
	}
	return clientIP(r, false)
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
