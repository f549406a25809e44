package dbopen

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestOpen_Pragmas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var mode string
	db.QueryRow("PRAGMA journal_mode").Scan(&mode)
	if mode != "wal" {
		t.Errorf("journal_mode: got %q, want wal", mode)
	}
	var fk int
	db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Errorf("foreign_keys: got %d", fk)
	}
	var timeout int
	db.QueryRow("PRAGMA busy_timeout").Scan(&timeout)
	if timeout != 10000 {
		t.Errorf("busy_timeout: got %d", timeout)
	}
}

func TestOpen_PragmasOnEveryConnection(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "site.db"), WithBusyTimeout(1234))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	var conns []*sql.Conn
	for range 3 {
		c, err := db.Conn(ctx)
		if err != nil {
			t.Fatal(err)
		}
		conns = append(conns, c)
	}
	for i, c := range conns {
		var fk, timeout int
		c.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk)
		c.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout)
		if fk != 1 || timeout != 1234 {
			t.Errorf("conn %d: foreign_keys=%d busy_timeout=%d", i, fk, timeout)
		}
		c.Close()
	}
}

func TestWithBusyTimeout(t *testing.T) {
	db := OpenMemory(t, WithBusyTimeout(250))
	var timeout int
	db.QueryRow("PRAGMA busy_timeout").Scan(&timeout)
	if timeout != 250 {
		t.Fatalf("busy_timeout: got %d", timeout)
	}
}

func TestWithSchema(t *testing.T) {
	db := OpenMemory(t,
		WithSchema(`CREATE TABLE a (id INTEGER PRIMARY KEY)`),
		WithSchema(`CREATE TABLE b (id INTEGER PRIMARY KEY, a_id INTEGER REFERENCES a(id))`),
	)
	if _, err := db.Exec(`INSERT INTO a (id) VALUES (1)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO b (id, a_id) VALUES (1, 1)`); err != nil {
		t.Fatal(err)
	}
}

func TestWithSchema_Invalid(t *testing.T) {
	if _, err := Open(":memory:", WithSchema("NOT SQL")); err == nil {
		t.Fatal("expected schema error")
	}
}

func TestWithMkdirAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "site.db")
	db, err := Open(path, WithMkdirAll())
	if err != nil {
		t.Fatal(err)
	}
	db.Close()
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Fatalf("dir not created: %v", err)
	}
}

func TestIsBusy(t *testing.T) {
	cases := map[string]bool{
		"SQLITE_BUSY":             true,
		"database is locked":      true,
		"database table is locked": true,
		"no such table":           false,
	}
	for msg, want := range cases {
		if got := IsBusy(errors.New(msg)); got != want {
			t.Errorf("IsBusy(%q): got %v", msg, got)
		}
	}
	if IsBusy(nil) {
		t.Error("IsBusy(nil) should be false")
	}
}

func TestExec(t *testing.T) {
	db := OpenMemory(t, WithSchema(`CREATE TABLE t (v TEXT)`))
	res, err := Exec(context.Background(), db, `INSERT INTO t (v) VALUES (?)`, "x")
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		t.Fatalf("rows affected: %d", n)
	}
}

func TestExec_NonBusyErrorNotRetried(t *testing.T) {
	db := OpenMemory(t)
	if _, err := Exec(context.Background(), db, `INSERT INTO missing (v) VALUES (1)`); err == nil {
		t.Fatal("expected error")
	}
}
