// Package observability keeps a SQLite audit trail of the operations that
// matter on the site: contact submissions, admin reads and MCP tool calls.
// Entries are written asynchronously in batches; a failing store is logged
// and never blocks a request.
package observability

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/simplecybertech/web/dbopen"
	"github.com/simplecybertech/web/idgen"
)

// Entry statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// AuditEntry is a single operation record in the audit trail.
type AuditEntry struct {
	EntryID       string    `json:"entry_id"`
	Timestamp     time.Time `json:"timestamp"`
	ComponentName string    `json:"component"` // e.g. "contact", "admin", "mcp"
	OperationType string    `json:"operation"` // e.g. "submit", "site_resolve_city"

	RequestID string `json:"request_id,omitempty"` // trace id of the request
	RemoteIP  string `json:"remote_ip,omitempty"`

	Parameters   string `json:"parameters"` // JSON
	StatusCode   int    `json:"status_code,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
	DurationMs   int64  `json:"duration_ms"`

	Status string `json:"status"`
}

// AuditFilter controls query results from the audit log.
type AuditFilter struct {
	Since         time.Time // zero = no lower bound
	ComponentName string    // "" = any
	OperationType string    // "" = any
	Status        string    // "" = any
	Limit         int       // default 100
	Offset        int
}

// AuditLogger persists audit entries asynchronously.
type AuditLogger struct {
	db         *sql.DB
	newID      idgen.Generator
	logger     *slog.Logger
	ch         chan *AuditEntry
	stop       chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
	flushEvery time.Duration

	// mu orders queue sends against Close: senders hold the read lock, so
	// once Close holds the write lock nothing more reaches ch.
	mu     sync.RWMutex
	closed bool
}

// AuditOption configures an AuditLogger.
type AuditOption func(*AuditLogger)

// WithIDGenerator sets the generator for entry ids. Default: UUIDv7.
func WithIDGenerator(gen idgen.Generator) AuditOption {
	return func(a *AuditLogger) { a.newID = gen }
}

// WithLogger sets the logger used for store failures.
func WithLogger(l *slog.Logger) AuditOption {
	return func(a *AuditLogger) { a.logger = l }
}

// WithFlushInterval sets how often queued entries are written. Default: 5s.
func WithFlushInterval(d time.Duration) AuditOption {
	return func(a *AuditLogger) { a.flushEvery = d }
}

// NewAuditLogger creates an async audit logger. Recommended bufferSize: 1000.
func NewAuditLogger(db *sql.DB, bufferSize int, opts ...AuditOption) *AuditLogger {
	a := &AuditLogger{
		db:         db,
		newID:      idgen.Default,
		logger:     slog.Default(),
		ch:         make(chan *AuditEntry, bufferSize),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		flushEvery: 5 * time.Second,
	}
	for _, o := range opts {
		o(a)
	}
	go a.flushLoop()
	return a
}

// Log inserts an audit entry synchronously.
func (a *AuditLogger) Log(ctx context.Context, entry *AuditEntry) error {
	a.fillDefaults(entry)
	return a.insert(ctx, entry)
}

// LogAsync queues an entry for the batch writer. A full buffer or a closed
// logger degrades to a synchronous insert.
func (a *AuditLogger) LogAsync(entry *AuditEntry) {
	a.fillDefaults(entry)
	if a.enqueue(entry) {
		return
	}
	if err := a.insert(context.Background(), entry); err != nil {
		a.logger.Error("audit: inline write failed", "error", err, "entry_id", entry.EntryID)
	}
}

func (a *AuditLogger) enqueue(entry *AuditEntry) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return false
	}
	select {
	case a.ch <- entry:
		return true
	default:
		a.logger.Warn("audit buffer full, writing inline", "component", entry.ComponentName)
		return false
	}
}

// NewAuditEntry builds an entry from operation parameters and outcome.
// Params are marshalled to JSON.
func (a *AuditLogger) NewAuditEntry(component, operation string, params any, err error, duration time.Duration) *AuditEntry {
	entry := &AuditEntry{
		EntryID:       a.newID(),
		Timestamp:     time.Now(),
		ComponentName: component,
		OperationType: operation,
		DurationMs:    duration.Milliseconds(),
		Status:        StatusSuccess,
	}
	if params != nil {
		if b, e := json.Marshal(params); e == nil {
			entry.Parameters = string(b)
		}
	}
	if err != nil {
		entry.Status = StatusError
		entry.ErrorMessage = err.Error()
	}
	return entry
}

// Query retrieves audit entries matching the filter, newest first.
func (a *AuditLogger) Query(ctx context.Context, f AuditFilter) ([]*AuditEntry, error) {
	var (
		where []string
		args  []any
	)
	if !f.Since.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, f.Since.Unix())
	}
	if f.ComponentName != "" {
		where = append(where, "component_name = ?")
		args = append(args, f.ComponentName)
	}
	if f.OperationType != "" {
		where = append(where, "operation_type = ?")
		args = append(args, f.OperationType)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}

	q := `SELECT entry_id, timestamp, component_name, operation_type,
		request_id, remote_ip, parameters, status_code, error_message,
		duration_ms, status
		FROM audit_log`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	limit := 100
	if f.Limit > 0 {
		limit = f.Limit
	}
	q += " ORDER BY timestamp DESC, entry_id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, max(f.Offset, 0))

	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	entries := []*AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		var ts int64
		var requestID, remoteIP, errorMessage sql.NullString
		var statusCode, durationMs sql.NullInt64
		if err := rows.Scan(
			&e.EntryID, &ts, &e.ComponentName, &e.OperationType,
			&requestID, &remoteIP, &e.Parameters, &statusCode, &errorMessage,
			&durationMs, &e.Status,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Timestamp = time.Unix(ts, 0)
		e.RequestID = requestID.String
		e.RemoteIP = remoteIP.String
		e.StatusCode = int(statusCode.Int64)
		e.ErrorMessage = errorMessage.String
		e.DurationMs = durationMs.Int64
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Cleanup deletes audit entries older than retentionDays.
func (a *AuditLogger) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	threshold := time.Now().AddDate(0, 0, -retentionDays).Unix()
	result, err := a.db.ExecContext(ctx, "DELETE FROM audit_log WHERE timestamp < ?", threshold)
	if err != nil {
		return 0, fmt.Errorf("cleanup audit log: %w", err)
	}
	return result.RowsAffected()
}

// StartRetention runs Cleanup once a day until ctx is done. Zero or
// negative retentionDays keeps everything.
func (a *AuditLogger) StartRetention(ctx context.Context, retentionDays int) {
	if retentionDays <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			if n, err := a.Cleanup(ctx, retentionDays); err != nil {
				a.logger.Error("audit: retention cleanup", "error", err)
			} else if n > 0 {
				a.logger.Info("audit: retention cleanup", "deleted", n)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Close drains the buffer and stops the flush goroutine. Later calls are
// no-ops.
func (a *AuditLogger) Close() error {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		a.mu.Unlock()
		close(a.stop)
	})
	<-a.done
	return nil
}

func (a *AuditLogger) fillDefaults(e *AuditEntry) {
	if e.EntryID == "" {
		e.EntryID = a.newID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Parameters == "" {
		e.Parameters = "{}"
	}
	if e.Status == "" {
		if e.ErrorMessage != "" {
			e.Status = StatusError
		} else {
			e.Status = StatusSuccess
		}
	}
}

const insertAudit = `INSERT INTO audit_log
	(entry_id, timestamp, component_name, operation_type,
	 request_id, remote_ip, parameters, status_code, error_message,
	 duration_ms, status)
	VALUES (?,?,?,?,?,?,?,?,?,?,?)`

const batchSize = 100

func (a *AuditLogger) flushLoop() {
	defer close(a.done)
	tick := time.NewTicker(a.flushEvery)
	defer tick.Stop()

	pending := make([]*AuditEntry, 0, batchSize)
	write := func() {
		if len(pending) > 0 {
			a.writeBatch(pending)
			pending = pending[:0]
		}
	}
	for {
		select {
		case e := <-a.ch:
			if pending = append(pending, e); len(pending) == batchSize {
				write()
			}
		case <-tick.C:
			write()
		case <-a.stop:
			for len(a.ch) > 0 {
				pending = append(pending, <-a.ch)
			}
			write()
			return
		}
	}
}

// writeBatch stores entries in one transaction. A failed row is logged and
// skipped so the rest of the batch still lands.
func (a *AuditLogger) writeBatch(batch []*AuditEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		a.logger.Error("audit: begin batch", "error", err, "entries", len(batch))
		return
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, insertAudit)
	if err != nil {
		a.logger.Error("audit: prepare batch", "error", err)
		return
	}
	defer stmt.Close()
	for _, e := range batch {
		if _, err := stmt.ExecContext(ctx, e.args()...); err != nil {
			a.logger.Error("audit: batch row", "error", err, "entry_id", e.EntryID)
		}
	}
	if err := tx.Commit(); err != nil {
		a.logger.Error("audit: commit batch", "error", err, "entries", len(batch))
	}
}

func (a *AuditLogger) insert(ctx context.Context, e *AuditEntry) error {
	_, err := dbopen.Exec(ctx, a.db, insertAudit, e.args()...)
	return err
}

func (e *AuditEntry) args() []any {
	return []any{
		e.EntryID, e.Timestamp.Unix(), e.ComponentName, e.OperationType,
		e.RequestID, e.RemoteIP, e.Parameters, e.StatusCode, e.ErrorMessage,
		e.DurationMs, e.Status,
	}
}
