package contact

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/simplecybertech/web/shield"
)

// BasicAuth guards next with HTTP Basic auth. The password is checked against
// a bcrypt hash. With an empty user or hash every request is refused, so an
// unconfigured deployment never exposes the admin API.
func BasicAuth(realm, user, passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if ok && user != "" && passwordHash != "" &&
				subtle.ConstantTimeCompare([]byte(u), []byte(user)) == 1 &&
				bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(p)) == nil {
				next.ServeHTTP(w, r)
				return
			}
			if ok {
				shield.GetLogger(r.Context()).Warn("admin: authentication failed", "user", u)
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`", charset="UTF-8"`)
			jsonErr(w, "unauthorized", http.StatusUnauthorized)
		})
	}
}
