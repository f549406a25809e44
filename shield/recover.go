package shield

import (
	"net/http"
	"runtime/debug"
)

// Recover turns a panic in a downstream handler into a logged 500 response.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			GetLogger(r.Context()).Error("panic recovered",
				"panic", rec,
				"trace_id", w.Header().Get("X-Trace-ID"),
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(errorPage))
		}()
		next.ServeHTTP(w, r)
	})
}

const errorPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Error</title>
</head>
<body>
<h1>Something went wrong</h1>
<p>An error occurred while processing your request. Please try again, or call us if the problem persists.</p>
<p><a href="/">Return home</a></p>
</body>
</html>`
