package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/m3rciful/iteachbot/migrations"
)

func TestSelectApplied(t *testing.T) {
	files := []string{"000001_a.up.sql", "000002_b.up.sql", "000003_c.up.sql"}
	got := selectApplied(files, 1, 3)
	if len(got) != 2 || got[0] != "000002_b.up.sql" || got[1] != "000003_c.up.sql" {
		t.Fatalf("selectApplied = %v", got)
	}
	if got := selectApplied(files, 3, 3); len(got) != 0 {
		t.Fatalf("expected nothing applied, got %v", got)
	}
}

func TestListMigrationFilesPerDriver(t *testing.T) {
	for _, driver := range []string{DriverPostgres, DriverSQLite} {
		files := listMigrationFiles(migrations.FS, driver)
		if len(files) == 0 {
			t.Fatalf("%s: no embedded migrations", driver)
		}
		if parseVersion(files[0]) != 1 {
			t.Fatalf("%s: first migration = %s", driver, files[0])
		}
	}
}

func TestMigrateSQLiteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "academy.db")
	if err := Migrate(ctx, DriverSQLite, dsn, migrations.FS); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if err := Migrate(ctx, DriverSQLite, dsn, migrations.FS); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	cfg := Config{Driver: DriverSQLite, DSN: dsn}
	if err := Normalize(&cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	db, err := Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM registrations`); err != nil {
		t.Fatalf("registrations table missing: %v", err)
	}
}

func TestNormalizeDatabase(t *testing.T) {
	cfg := Config{DSN: "postgres://u:p@localhost/db"}
	if err := Normalize(&cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Driver != DriverPostgres || cfg.MaxConnections != 5 || cfg.WaitSeconds != 30 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	cfg = Config{Driver: "sqlite3", DSN: "x.db", MaxConnections: 10}
	if err := Normalize(&cfg); err != nil {
		t.Fatalf("normalize sqlite: %v", err)
	}
	if cfg.Driver != DriverSQLite || cfg.MaxConnections != 1 {
		t.Fatalf("sqlite config = %+v", cfg)
	}

	for _, bad := range []Config{{DSN: ""}, {Driver: "mysql", DSN: "x"}, {DSN: "x", MaxConnections: -1}} {
		if err := Normalize(&bad); err == nil {
			t.Fatalf("expected error for %+v", bad)
		}
	}
}

func TestRedact(t *testing.T) {
	if got := Redact("postgres://user:secret@db:5432/academy?sslmode=disable"); got != "postgres://db:5432/academy" {
		t.Fatalf("Redact = %q", got)
	}
	if got := Redact("host=db password=secret"); got != "<redacted>" {
		t.Fatalf("Redact kv = %q", got)
	}
}
