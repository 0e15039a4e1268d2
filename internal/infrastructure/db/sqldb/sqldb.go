// Package sqldb is the relational entity store: users, trainers, training
// sessions and reservations. It runs on PostgreSQL (pgx) in production and on
// SQLite (modernc, pure Go) for local development and tests. Both dialects
// share the same SQL; placeholders are $N and inserts use RETURNING.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"

	"github.com/klubfitness/fitness-club/internal/core/domain"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultTimeout = 5 * time.Second
)

// Config selects the driver and pool settings.
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Timeout         time.Duration
}

// Open connects to the configured database and verifies it with a ping.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	driverName, dsn, err := resolve(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}

	switch cfg.Driver {
	case DriverSQLite:
		// one writer; also keeps in-memory databases alive
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	default:
		db.SetMaxOpenConns(orDefault(cfg.MaxOpenConns, 25))
		db.SetMaxIdleConns(orDefault(cfg.MaxIdleConns, 25))
		lifetime := cfg.ConnMaxLifetime
		if lifetime <= 0 {
			lifetime = 30 * time.Minute
		}
		db.SetConnMaxLifetime(lifetime)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sql ping: %w", err)
	}
	return db, nil
}

// resolve maps the configured driver to a database/sql driver name and
// normalises the DSN. SQLite always gets foreign keys and a busy timeout so
// ON DELETE CASCADE works on every pooled connection.
func resolve(cfg Config) (string, string, error) {
	switch cfg.Driver {
	case DriverPostgres:
		if cfg.DSN == "" {
			return "", "", fmt.Errorf("sqldb: postgres DSN is required")
		}
		return "pgx", cfg.DSN, nil
	case DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "file:fitness.db"
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return "sqlite", dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
	default:
		return "", "", fmt.Errorf("sqldb: unsupported driver %q", cfg.Driver)
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// withTimeout bounds a single store call.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultTimeout)
}

// dbTime normalises instants before they reach the driver so both dialects
// store and compare the same value.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

type scannable interface {
	Scan(dest ...any) error
}

// requireAffected turns a zero-row UPDATE into a NotFound for kind.
func requireAffected(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.NotFound(kind, id)
	}
	return nil
}

// deleteByID deletes one row and reports whether it existed. table is always
// a package constant, never user input.
func deleteByID(ctx context.Context, db *sql.DB, table string, id int64) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
