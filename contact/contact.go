// Package contact stores the security-review requests prospects send from the
// contact page and exposes them to the office through a small JSON API.
//
// The public form posts to [Desk.HandleSubmit]; the admin listing is served
// by [Desk.AdminHandler] behind [BasicAuth].
package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/simplecybertech/web/dbopen"
	"github.com/simplecybertech/web/idgen"
)

// MaxMessageBytes caps the stored message. Longer messages are truncated on a
// rune boundary.
const MaxMessageBytes = 5000

// maxFieldBytes caps every other free-text field.
const maxFieldBytes = 200

var (
	// ErrInvalidRequest wraps every validation failure of a submission.
	ErrInvalidRequest = errors.New("contact: invalid request")
	// ErrNotFound is returned by Get when no request has the given id.
	ErrNotFound = errors.New("contact: request not found")
)

// Schema creates the review_requests table.
const Schema = `
CREATE TABLE IF NOT EXISTS review_requests (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL,
    company    TEXT NOT NULL DEFAULT '',
    phone      TEXT NOT NULL DEFAULT '',
    city       TEXT NOT NULL DEFAULT '',
    message    TEXT NOT NULL,
    page_url   TEXT NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT '',
    remote_ip  TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_review_requests_created ON review_requests(created_at DESC);
`

// Submission is what a visitor typed into the contact form.
type Submission struct {
	Name    string
	Email   string
	Company string
	Phone   string
	City    string
	Message string
}

// Request is a stored submission.
type Request struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	Message   string `json:"message"`
	PageURL   string `json:"page_url"`
	UserAgent string `json:"user_agent"`
	RemoteIP  string `json:"remote_ip"`
	CreatedAt int64  `json:"created_at"`
}

// Meta carries request details recorded alongside a submission.
type Meta struct {
	PageURL   string
	UserAgent string
	RemoteIP  string
}

// Config holds the settings needed to create a Desk.
type Config struct {
	DB    *sql.DB
	NewID idgen.Generator  // nil = idgen.Default
	Now   func() time.Time // nil = time.Now
}

// Desk receives and lists review requests.
type Desk struct {
	db     *sql.DB
	newID  idgen.Generator
	now    func() time.Time
	strict *bluemonday.Policy
}

// New creates a Desk and applies the database schema.
func New(cfg Config) (*Desk, error) {
	if cfg.DB == nil {
		return nil, fmt.Errorf("contact: DB is required")
	}
	if _, err := cfg.DB.Exec(Schema); err != nil {
		return nil, fmt.Errorf("contact schema: %w", err)
	}
	d := &Desk{
		db:     cfg.DB,
		newID:  cfg.NewID,
		now:    cfg.Now,
		strict: bluemonday.StrictPolicy(),
	}
	if d.newID == nil {
		d.newID = idgen.Default
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d, nil
}

// clean strips markup, decodes entities and collapses surrounding space.
func (d *Desk) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(d.strict.Sanitize(s)))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

// normalize cleans every field and checks the required ones. All problems
// are reported together, each wrapped in ErrInvalidRequest.
func (d *Desk) normalize(sub Submission) (Submission, error) {
	out := Submission{
		Name:    truncate(d.clean(sub.Name), maxFieldBytes),
		Email:   truncate(strings.TrimSpace(sub.Email), maxFieldBytes),
		Company: truncate(d.clean(sub.Company), maxFieldBytes),
		Phone:   truncate(d.clean(sub.Phone), maxFieldBytes),
		City:    truncate(d.clean(sub.City), maxFieldBytes),
		Message: truncate(d.clean(sub.Message), MaxMessageBytes),
	}
	var errs []error
	if out.Name == "" {
		errs = append(errs, fmt.Errorf("%w: name is required", ErrInvalidRequest))
	}
	switch {
	case out.Email == "":
		errs = append(errs, fmt.Errorf("%w: email is required", ErrInvalidRequest))
	case !strings.Contains(out.Email, "@") || strings.ContainsAny(out.Email, " <>\"'"):
		errs = append(errs, fmt.Errorf("%w: email %q is not valid", ErrInvalidRequest, out.Email))
	}
	if out.Message == "" {
		errs = append(errs, fmt.Errorf("%w: message is required", ErrInvalidRequest))
	}
	return out, errors.Join(errs...)
}

// Submit validates and stores a submission.
func (d *Desk) Submit(ctx context.Context, sub Submission, meta Meta) (*Request, error) {
	sub, err := d.normalize(sub)
	if err != nil {
		return nil, err
	}
	req := &Request{
		ID:        d.newID(),
		Name:      sub.Name,
		Email:     sub.Email,
		Company:   sub.Company,
		Phone:     sub.Phone,
		City:      sub.City,
		Message:   sub.Message,
		PageURL:   truncate(meta.PageURL, 2048),
		UserAgent: truncate(meta.UserAgent, 512),
		RemoteIP:  meta.RemoteIP,
		CreatedAt: d.now().Unix(),
	}
	_, err = dbopen.Exec(ctx, d.db,
		`INSERT INTO review_requests (id, name, email, company, phone, city, message, page_url, user_agent, remote_ip, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.Name, req.Email, req.Company, req.Phone, req.City, req.Message,
		req.PageURL, req.UserAgent, req.RemoteIP, req.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("contact: insert: %w", err)
	}
	return req, nil
}

const selectColumns = `id, name, email, company, phone, city, message, page_url, user_agent, remote_ip, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(s scanner) (Request, error) {
	var r Request
	err := s.Scan(&r.ID, &r.Name, &r.Email, &r.Company, &r.Phone, &r.City, &r.Message,
		&r.PageURL, &r.UserAgent, &r.RemoteIP, &r.CreatedAt)
	return r, err
}

// List returns requests newest first. Ties on created_at are broken by id,
// which sorts by creation time for UUIDv7 ids.
func (d *Desk) List(ctx context.Context, limit, offset int) ([]Request, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM review_requests ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("contact: list: %w", err)
	}
	defer rows.Close()

	requests := []Request{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("contact: scan: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// Get returns one request by id.
func (d *Desk) Get(ctx context.Context, id string) (*Request, error) {
	id, err := idgen.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	r, err := scanRequest(d.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM review_requests WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("contact: get: %w", err)
	}
	return &r, nil
}

// Count returns the number of stored requests.
func (d *Desk) Count(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM review_requests`).Scan(&n)
	return n, err
}
