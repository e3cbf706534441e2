package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
telegram:
  token: "123:yaml"
  admin_id: 42
logging:
  level: debug
database:
  driver: sqlite
  dsn: /tmp/academy.db
sessions:
  idle_ttl: 45m
health:
  listen: ":8081"
academy:
  timezone: Europe/Berlin
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "123:yaml" || cfg.Telegram.AdminID != 42 {
		t.Fatalf("telegram = %+v", cfg.Telegram)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.MaxConnections != 1 {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if cfg.Sessions.IdleTTL != 45*time.Minute || cfg.Sessions.SweepSpec != defaultSweepSpec {
		t.Fatalf("sessions = %+v", cfg.Sessions)
	}
	if cfg.Location().String() != "Europe/Berlin" || cfg.Health.Listen != ":8081" {
		t.Fatalf("location = %s, health = %q", cfg.Location(), cfg.Health.Listen)
	}
	if cfg.CoreConfig().Logging.Level != "debug" {
		t.Fatalf("core logging = %+v", cfg.CoreConfig().Logging)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("BOT_TOKEN", "999:env")
	t.Setenv("DATABASE_URL", "postgres://academy@db/academy")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("SESSION_IDLE_TTL", "2h")

	cfg, err := LoadConfig(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "999:env" || cfg.Database.Driver != "postgres" || cfg.Database.MaxConnections != 5 {
		t.Fatalf("cfg = %+v / %+v", cfg.Telegram, cfg.Database)
	}
	if cfg.Sessions.IdleTTL != 2*time.Hour {
		t.Fatalf("idle ttl = %s", cfg.Sessions.IdleTTL)
	}
}

func TestEnvironmentOnly(t *testing.T) {
	t.Setenv("BOT_TOKEN", "1:env")
	t.Setenv("ADMIN_ID", "7")
	t.Setenv("DATABASE_URL", "postgres://academy@db/academy")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Location().String() != defaultTimezone || cfg.Academy.Timezone != defaultTimezone {
		t.Fatalf("timezone = %s", cfg.Location())
	}
	if cfg.Telegram.RunMode != "longpoll" {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
}

func TestNormalizeRejects(t *testing.T) {
	base := func() Config {
		var c Config
		c.Telegram.Token = "1:x"
		c.Telegram.AdminID = 1
		c.Database.DSN = "postgres://x"
		return c
	}
	cases := map[string]func(*Config){
		"missing dsn":  func(c *Config) { c.Database.DSN = "" },
		"bad driver":   func(c *Config) { c.Database.Driver = "mysql" },
		"negative ttl": func(c *Config) { c.Sessions.IdleTTL = -time.Second },
		"bad timezone": func(c *Config) { c.Academy.Timezone = "Mars/Olympus" },
		"no admin":     func(c *Config) { c.Telegram.AdminID = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(&cfg)
			if err := Normalize(&cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
