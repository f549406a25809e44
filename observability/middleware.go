package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/simplecybertech/web/kit"
)

// Endpoint returns a kit.Middleware that records one audit entry per call,
// with the decoded request as parameters.
func (a *AuditLogger) Endpoint(component, operation string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			e := a.NewAuditEntry(component, operation, req, err, time.Since(start))
			e.RequestID = kit.GetTraceID(ctx)
			e.RemoteIP = kit.GetRemoteAddr(ctx)
			a.LogAsync(e)
			return resp, err
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// HTTP returns middleware that records one audit entry per request: method
// and path as parameters, response status, trace id and client address.
// Request bodies are never recorded. 4xx and 5xx responses are errors.
func (a *AuditLogger) HTTP(component, operation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			e := a.NewAuditEntry(component, operation, map[string]string{
				"method": r.Method,
				"path":   r.URL.Path,
			}, nil, time.Since(start))
			e.StatusCode = rec.status
			e.RequestID = kit.GetTraceID(r.Context())
			e.RemoteIP = kit.GetRemoteAddr(r.Context())
			if rec.status >= 400 {
				e.Status = StatusError
				e.ErrorMessage = http.StatusText(rec.status)
			}
			a.LogAsync(e)
		})
	}
}
