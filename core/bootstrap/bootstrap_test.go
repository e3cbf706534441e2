package bootstrap

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/iteachbot/core/config"
	coredatabase "github.com/m3rciful/iteachbot/core/database"
)

func noLogger(coreconfig.LoggingConfig) error { return nil }

func TestRunSQLite(t *testing.T) {
	cfg := coredatabase.Config{Driver: coredatabase.DriverSQLite, DSN: filepath.Join(t.TempDir(), "boot.db")}
	if err := coredatabase.Normalize(&cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	res, err := Run(context.Background(), Options{Database: cfg, LoggerInit: noLogger})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	defer res.DB.Close()

	var n int
	if err := res.DB.Get(&n, `SELECT COUNT(*) FROM registrations`); err != nil {
		t.Fatalf("schema not migrated: %v", err)
	}
}

func TestRunStopsOnMigrationError(t *testing.T) {
	connected := false
	_, err := Run(context.Background(), Options{
		LoggerInit: noLogger,
		Migrate:    func(context.Context, coredatabase.Config) error { return errors.New("dirty database") },
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			connected = true
			return nil, nil
		},
	})
	if err == nil || connected {
		t.Fatalf("err=%v connected=%v", err, connected)
	}
}

func TestRunPropagatesLoggerError(t *testing.T) {
	_, err := Run(context.Background(), Options{
		LoggerInit: func(coreconfig.LoggingConfig) error { return errors.New("no log dir") },
	})
	if err == nil {
		t.Fatal("expected logger error")
	}
}
