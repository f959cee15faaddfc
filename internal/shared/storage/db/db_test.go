package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io/fs"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type nopDriver struct{}

func (nopDriver) Open(string) (driver.Conn, error) { return nopConn{}, nil }

type nopConn struct{}

func (nopConn) Prepare(string) (driver.Stmt, error) { return nopStmt{}, nil }
func (nopConn) Close() error                        { return nil }
func (nopConn) Begin() (driver.Tx, error)           { return nopTx{}, nil }
func (nopConn) Ping(context.Context) error          { return nil }

type nopStmt struct{}

func (nopStmt) Close() error                               { return nil }
func (nopStmt) NumInput() int                              { return -1 }
func (nopStmt) Exec([]driver.Value) (driver.Result, error) { return driver.RowsAffected(0), nil }
func (nopStmt) Query([]driver.Value) (driver.Rows, error)  { return nopRows{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type nopRows struct{}

func (nopRows) Columns() []string         { return nil }
func (nopRows) Close() error              { return nil }
func (nopRows) Next([]driver.Value) error { return driver.ErrBadConn }

var registerOnce sync.Once

func useNopDriver(t *testing.T) {
	t.Helper()
	registerOnce.Do(func() { sql.Register("humangov-nop", nopDriver{}) })
	prev := openDB
	openDB = func(_, dsn string) (*sql.DB, error) { return sql.Open("humangov-nop", dsn) }
	t.Cleanup(func() { openDB = prev })
}

func resetShared(t *testing.T) {
	t.Helper()
	sharedMu.Lock()
	sharedDB = nil
	sharedMu.Unlock()
	t.Cleanup(func() {
		sharedMu.Lock()
		sharedDB = nil
		sharedMu.Unlock()
	})
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", ServerOptions()); !errors.Is(err, ErrNoURL) {
		t.Fatalf("expected ErrNoURL, got %v", err)
	}
}

func TestConnectAppliesEnvOverrides(t *testing.T) {
	useNopDriver(t)
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "not-a-duration")

	opts := OptionsFromEnv(ServerOptions())
	if opts.MaxIdleConns != 3 || opts.ConnMaxLifetime != 20*time.Minute || opts.ConnMaxIdleTime != 45*time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.PingTimeout != ServerOptions().PingTimeout {
		t.Fatalf("invalid override should keep default, got %s", opts.PingTimeout)
	}

	database, err := Connect(context.Background(), "postgres://ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer database.Close()
	if got := database.Stats().MaxOpenConnections; got != 7 {
		t.Fatalf("expected max open 7, got %d", got)
	}
}

func TestSharedReusesPool(t *testing.T) {
	useNopDriver(t)
	resetShared(t)

	first, err := Shared(context.Background(), "postgres://ignored", LambdaOptions())
	if err != nil {
		t.Fatalf("Shared: %v", err)
	}
	second, err := Shared(context.Background(), "postgres://ignored", LambdaOptions())
	if err != nil {
		t.Fatalf("Shared: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same pool")
	}
}

func TestSharedRetriesAfterFailure(t *testing.T) {
	useNopDriver(t)
	resetShared(t)
	working := openDB
	var calls int32
	openDB = func(name, dsn string) (*sql.DB, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, driver.ErrBadConn
		}
		return working(name, dsn)
	}

	if _, err := Shared(context.Background(), "postgres://ignored", LambdaOptions()); err == nil {
		t.Fatalf("expected first connect to fail")
	}
	database, err := Shared(context.Background(), "postgres://ignored", LambdaOptions())
	if err != nil || database == nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}

func TestRunMigrationsNilDatabase(t *testing.T) {
	if err := RunMigrations(context.Background(), nil); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestMigrationsAreEmbedded(t *testing.T) {
	data, err := fs.ReadFile(migrationFiles, "migrations/00001_create_records.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	content := string(data)
	for _, want := range []string{"-- +goose Up", "-- +goose Down", "first_name", "pdf"} {
		if !strings.Contains(content, want) {
			t.Fatalf("migration missing %q", want)
		}
	}
}
