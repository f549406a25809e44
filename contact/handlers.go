package contact

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/simplecybertech/web/shield"
)

// FormPath is where the contact form lives and where submissions redirect.
const FormPath = "/contact-us"

const (
	flashThanks  = "Thanks! Your request was received. We'll reach out within one business day."
	flashInvalid = "Please provide your name, a valid email address and a short message."
	flashFailed  = "Sorry, we couldn't save your request. Please call us instead."
)

// HandleSubmit accepts the contact form and redirects back to it with a
// flash message.
func (d *Desk) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	log := shield.GetLogger(r.Context())
	if err := r.ParseForm(); err != nil {
		log.Warn("contact: parse form", "error", err)
		shield.SetFlash(w, shield.FlashError, flashInvalid)
		http.Redirect(w, r, FormPath, http.StatusSeeOther)
		return
	}

	sub := Submission{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Company: r.PostFormValue("company"),
		Phone:   r.PostFormValue("phone"),
		City:    r.PostFormValue("city"),
		Message: r.PostFormValue("message"),
	}
	req, err := d.Submit(r.Context(), sub, Meta{
		PageURL:   r.Referer(),
		UserAgent: r.UserAgent(),
		RemoteIP:  shield.ExtractIP(r),
	})
	switch {
	case errors.Is(err, ErrInvalidRequest):
		log.Info("contact: rejected submission", "error", err)
		shield.SetFlash(w, shield.FlashError, flashInvalid)
	case err != nil:
		log.Error("contact: store submission", "error", err)
		shield.SetFlash(w, shield.FlashError, flashFailed)
	default:
		log.Info("contact: review request received", "id", req.ID, "city", req.City)
		shield.SetFlash(w, shield.FlashSuccess, flashThanks)
	}
	http.Redirect(w, r, FormPath, http.StatusSeeOther)
}

// AdminHandler serves the JSON admin API. Mount it under /admin/requests
// behind BasicAuth:
//
//	GET /          list, ?limit= (1..500, default 50) &offset=
//	GET /{id}      one request
func (d *Desk) AdminHandler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", d.handleList)
	r.Get("/{id}", d.handleGet)
	return r
}

func (d *Desk) handleList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	requests, err := d.List(r.Context(), limit, offset)
	if err != nil {
		shield.GetLogger(r.Context()).Error("contact: list", "error", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}
	total, err := d.Count(r.Context())
	if err != nil {
		shield.GetLogger(r.Context()).Error("contact: count", "error", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":    total,
		"limit":    limit,
		"offset":   offset,
		"requests": requests,
	})
}

func (d *Desk) handleGet(w http.ResponseWriter, r *http.Request) {
	req, err := d.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		jsonErr(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		shield.GetLogger(r.Context()).Error("contact: get", "error", err)
		jsonErr(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonErr(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
