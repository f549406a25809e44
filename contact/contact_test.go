package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/simplecybertech/web/dbopen"
)

func newDesk(t *testing.T) *Desk {
	t.Helper()
	d, err := New(Config{DB: dbopen.OpenMemory(t)})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func validSubmission() Submission {
	return Submission{
		Name:    "Dana Reyes",
		Email:   "dana@example.com",
		Company: "Harbor Dental",
		Phone:   "(949) 555-0100",
		City:    "Irvine",
		Message: "We'd like a security review for our two offices.",
	}
}

func TestNew_NilDB(t *testing.T) {
	_, err := New(Config{})
	if err == nil || !strings.Contains(err.Error(), "DB is required") {
		t.Fatalf("expected DB is required error, got %v", err)
	}
}

func TestSubmitAndGet(t *testing.T) {
	d := newDesk(t)
	ctx := context.Background()

	req, err := d.Submit(ctx, validSubmission(), Meta{PageURL: "https://example.com/contact-us", RemoteIP: "203.0.113.4"})
	if err != nil {
		t.Fatal(err)
	}
	if req.CreatedAt == 0 || len(req.ID) != 36 {
		t.Fatalf("request: %+v", req)
	}

	got, err := d.Get(ctx, req.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Dana Reyes" || got.City != "Irvine" || got.RemoteIP != "203.0.113.4" {
		t.Fatalf("stored request: %+v", got)
	}
}

func TestSubmit_Validation(t *testing.T) {
	d := newDesk(t)
	tests := []struct {
		name   string
		mutate func(*Submission)
		want   string
	}{
		{"missing name", func(s *Submission) { s.Name = "  " }, "name is required"},
		{"missing email", func(s *Submission) { s.Email = "" }, "email is required"},
		{"email without at", func(s *Submission) { s.Email = "dana.example.com" }, "is not valid"},
		{"missing message", func(s *Submission) { s.Message = "<p> </p>" }, "message is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(&sub)
			_, err := d.Submit(context.Background(), sub, Meta{})
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q should mention %q", err, tt.want)
			}
		})
	}
	if n, _ := d.Count(context.Background()); n != 0 {
		t.Fatalf("invalid submissions stored: %d", n)
	}
}

func TestSubmit_ReportsAllProblems(t *testing.T) {
	d := newDesk(t)
	_, err := d.Submit(context.Background(), Submission{}, Meta{})
	for _, want := range []string{"name", "email", "message"} {
		if !strings.Contains(err.Error(), want+" is required") {
			t.Errorf("missing %q in %v", want, err)
		}
	}
}

func TestSubmit_StripsMarkup(t *testing.T) {
	d := newDesk(t)
	sub := validSubmission()
	sub.Name = `<b>Dana</b> & Co`
	sub.Message = `Hello <script>alert(1)</script><a href="https://evil.test">click</a> team`
	req, err := d.Submit(context.Background(), sub, Meta{})
	if err != nil {
		t.Fatal(err)
	}
	if req.Name != "Dana & Co" {
		t.Errorf("name: %q", req.Name)
	}
	if strings.ContainsAny(req.Message, "<>") || strings.Contains(req.Message, "alert") {
		t.Errorf("message not stripped: %q", req.Message)
	}
	if !strings.Contains(req.Message, "click") {
		t.Errorf("message lost link text: %q", req.Message)
	}
}

func TestSubmit_Truncation(t *testing.T) {
	d := newDesk(t)
	sub := validSubmission()
	sub.Message = strings.Repeat("a", 6000)
	req, err := d.Submit(context.Background(), sub, Meta{})
	if err != nil {
		t.Fatal(err)
	}
	if len(req.Message) != MaxMessageBytes {
		t.Fatalf("expected message length %d, got %d", MaxMessageBytes, len(req.Message))
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	s := strings.Repeat("é", 3) // 6 bytes
	if got := truncate(s, 5); got != "éé" {
		t.Fatalf("truncate: got %q", got)
	}
}

func TestList_NewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	d, err := New(Config{
		DB: dbopen.OpenMemory(t),
		Now: func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := range 3 {
		sub := validSubmission()
		sub.Name = fmt.Sprintf("client-%d", i)
		if _, err := d.Submit(context.Background(), sub, Meta{}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := d.List(context.Background(), 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "client-2" || got[1].Name != "client-1" {
		t.Fatalf("page 1: %+v", got)
	}
	got, _ = d.List(context.Background(), 2, 2)
	if len(got) != 1 || got[0].Name != "client-0" {
		t.Fatalf("page 2: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	d := newDesk(t)
	for _, id := range []string{"not-a-uuid", "0195f3a0-0000-7000-8000-000000000000"} {
		if _, err := d.Get(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q): expected ErrNotFound, got %v", id, err)
		}
	}
}

func postForm(h http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, FormPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func flashCookie(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "flash" {
			v, _ := url.QueryUnescape(c.Value)
			return v
		}
	}
	t.Fatal("no flash cookie")
	return ""
}

func TestHandleSubmit(t *testing.T) {
	d := newDesk(t)
	h := http.HandlerFunc(d.HandleSubmit)

	rec := postForm(h, url.Values{
		"name":    {"Dana"},
		"email":   {"dana@example.com"},
		"message": {"Please call me"},
	})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != FormPath {
		t.Fatalf("submit: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if got := flashCookie(t, rec); !strings.HasPrefix(got, "success:") {
		t.Fatalf("flash: %q", got)
	}
	if n, _ := d.Count(context.Background()); n != 1 {
		t.Fatalf("stored: %d", n)
	}

	rec = postForm(h, url.Values{"name": {"Dana"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("invalid submit: %d", rec.Code)
	}
	if got := flashCookie(t, rec); !strings.HasPrefix(got, "error:") {
		t.Fatalf("flash: %q", got)
	}
}

func TestAdminHandler(t *testing.T) {
	d := newDesk(t)
	stored, err := d.Submit(context.Background(), validSubmission(), Meta{})
	if err != nil {
		t.Fatal(err)
	}

	r := chi.NewRouter()
	r.Mount("/admin/requests", d.AdminHandler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/requests?limit=9999&offset=-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	var page struct {
		Total    int       `json:"total"`
		Limit    int       `json:"limit"`
		Offset   int       `json:"offset"`
		Requests []Request `json:"requests"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Limit != 50 || page.Offset != 0 || len(page.Requests) != 1 {
		t.Fatalf("page: %+v", page)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/requests/"+stored.ID, nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), stored.ID) {
		t.Fatalf("get: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/requests/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get missing: %d", rec.Code)
	}
}

func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name       string
		user, hash string
		reqUser    string
		reqPass    string
		noAuth     bool
		want       int
	}{
		{"valid", "admin", string(hash), "admin", "s3cret", false, http.StatusOK},
		{"wrong password", "admin", string(hash), "admin", "nope", false, http.StatusUnauthorized},
		{"wrong user", "admin", string(hash), "root", "s3cret", false, http.StatusUnauthorized},
		{"missing header", "admin", string(hash), "", "", true, http.StatusUnauthorized},
		{"unconfigured", "", "", "", "", false, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := BasicAuth("admin", tt.user, tt.hash)(ok)
			req := httptest.NewRequest("GET", "/admin/requests", nil)
			if !tt.noAuth {
				req.SetBasicAuth(tt.reqUser, tt.reqPass)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("got %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("WWW-Authenticate missing")
			}
		})
	}
}
