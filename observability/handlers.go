package observability

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/simplecybertech/web/shield"
)

// AdminHandler serves the audit trail as JSON. Mount it behind the admin
// Basic auth:
//
//	GET /   ?component= &operation= &status= &since=RFC3339 &limit= (1..500, default 100) &offset=
func (a *AuditLogger) AdminHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		q := r.URL.Query()
		f := AuditFilter{
			ComponentName: q.Get("component"),
			OperationType: q.Get("operation"),
			Status:        q.Get("status"),
			Limit:         100,
		}
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
				f.Limit = n
			}
		}
		if v := q.Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				f.Offset = n
			}
		}
		if v := q.Get("since"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "since must be RFC3339"})
				return
			}
			f.Since = t
		}

		entries, err := a.Query(r.Context(), f)
		if err != nil {
			shield.GetLogger(r.Context()).Error("audit: query", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"limit":   f.Limit,
			"offset":  f.Offset,
			"entries": entries,
		})
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
