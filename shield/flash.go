package shield

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Flash kinds, rendered as the flash-success / flash-error CSS classes.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

const (
	flashCookie     = "flash"
	maxFlashMessage = 512
)

// Flash moves a pending flash message from its cookie into the request
// context under FlashKey and clears the cookie. The cookie value is
// "kind:message"; a missing or unknown kind reads as an error.
func Flash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(flashCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: flashCookie, MaxAge: -1, Path: "/"})

		raw, err := url.QueryUnescape(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		flash := &FlashMessage{Type: FlashError, Message: raw}
		if kind, msg, ok := strings.Cut(raw, ":"); ok && (kind == FlashSuccess || kind == FlashError) {
			flash.Type, flash.Message = kind, msg
		}

		ctx := context.WithValue(r.Context(), FlashKey, flash)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetFlash queues a message for the next page the client loads, normally
// the target of a 303 redirect. Messages longer than 512 bytes are cut at
// a rune boundary. The cookie is HttpOnly, SameSite=Lax, and lives for ten
// seconds.
func SetFlash(w http.ResponseWriter, kind, message string) {
	if len(message) > maxFlashMessage {
		cut := maxFlashMessage
		for cut > 0 && !utf8.RuneStart(message[cut]) {
			cut--
		}
		message = message[:cut]
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + ":" + message),
		Path:     "/",
		MaxAge:   10,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
