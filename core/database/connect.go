package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/m3rciful/iteachbot/core/logger"
)

// Normalize validates the database section and fills defaults.
func Normalize(cfg *Config) error {
	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch cfg.Driver {
	case "", "postgresql", DriverPostgres:
		cfg.Driver = DriverPostgres
	case "sqlite3", DriverSQLite:
		cfg.Driver = DriverSQLite
	default:
		return fmt.Errorf("invalid database.driver %q; allowed: postgres, sqlite", cfg.Driver)
	}
	cfg.DSN = strings.TrimSpace(cfg.DSN)
	if cfg.DSN == "" {
		return fmt.Errorf("database.dsn (DATABASE_URL) is required")
	}
	if cfg.MaxConnections < 0 {
		return fmt.Errorf("database.max_connections must be >= 0")
	}
	if cfg.MaxConnections == 0 {
		cfg.MaxConnections = 5
	}
	if cfg.Driver == DriverSQLite {
		// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY.
		cfg.MaxConnections = 1
	}
	if cfg.WaitSeconds <= 0 {
		cfg.WaitSeconds = 30
	}
	return nil
}

// Connect opens the database connection, configures the pool, and verifies connectivity.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN)
	took := logger.Took(start)
	if err != nil {
		logger.Error(ctx, "db", "db.connect",
			slog.String("status", "fail"),
			slog.String("driver", cfg.Driver),
			slog.String("db", Redact(cfg.DSN)),
			slog.Duration("duration", took),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)
	logger.Debug(ctx, "db", "db.pool", slog.Int("pool_open", cfg.MaxConnections))

	logger.Info(ctx, "db", "db.connect",
		slog.String("status", "ok"),
		slog.String("driver", cfg.Driver),
		slog.String("db", Redact(cfg.DSN)),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration", took),
	)
	return db, nil
}

// WaitForDB pings a fresh connection until it succeeds, the timeout elapses or ctx ends.
func WaitForDB(ctx context.Context, driver, dsn string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	attempts := 0
	for {
		attempts++
		err := pingOnce(ctx, driver, dsn)
		if err == nil {
			if attempts > 1 {
				logger.Info(ctx, "db", "db.ready", slog.Int("attempts", attempts))
			}
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout reached waiting for database after %d attempts: %w", attempts, err)
		}
		logger.Warn(ctx, "db", "db.wait",
			slog.String("status", "retry"),
			slog.Int("attempts", attempts),
			slog.String("err", err.Error()),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func pingOnce(ctx context.Context, driver, dsn string) error {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return db.PingContext(pctx)
}

// Redact strips credentials from a DSN so it can be logged.
func Redact(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		if strings.Contains(dsn, "password=") {
			return "<redacted>"
		}
		return dsn
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = rest[at+1:]
	}
	if q := strings.Index(rest, "?"); q >= 0 {
		rest = rest[:q]
	}
	return scheme + "://" + rest
}
