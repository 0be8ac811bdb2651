package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaultsToSQLite(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("EVENT_CONFIG_PATH", "")
	t.Setenv("EXTRACTION_PROVIDER", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StoreDriver != StoreDriverSQLite {
		t.Fatalf("StoreDriver mismatch: got %q want %q", cfg.StoreDriver, StoreDriverSQLite)
	}
	if cfg.SQLitePath != "donors.db" {
		t.Fatalf("SQLitePath mismatch: got %q", cfg.SQLitePath)
	}
	if cfg.Event.Goal != 2000 || cfg.Event.RolePolicy != RolePolicyFirstCome {
		t.Fatalf("unexpected default event config: %#v", cfg.Event)
	}
}

func TestLoadConfigRequiresDatabaseURLForPostgres(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfigRejectsUnknownExtractionProvider(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("EXTRACTION_PROVIDER", "tesseract")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoadConfigSplitsCORSOrigins(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("EXTRACTION_PROVIDER", "none")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com ,,https://b.example.com")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("CORSAllowedOrigins mismatch: %#v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadEventConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.yaml")
	body := "goal: 500\nrole_policy: password\nadmin_secret: a\neditor_secret: e\nskip_policy: confirm_as_is\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	ev, err := LoadEventConfig(path)
	if err != nil {
		t.Fatalf("LoadEventConfig returned error: %v", err)
	}
	if ev.Goal != 500 {
		t.Fatalf("Goal = %v, want 500", ev.Goal)
	}
	if ev.RolePolicy != RolePolicyPassword || ev.SkipPolicy != SkipPolicyConfirmAsIs {
		t.Fatalf("policies not applied: %#v", ev)
	}
	if ev.CurrencySymbol != "$" {
		t.Fatalf("CurrencySymbol should keep default, got %q", ev.CurrencySymbol)
	}
}

func TestLoadEventConfigRejectsPasswordPolicyWithoutSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "event.yaml")
	if err := os.WriteFile(path, []byte("role_policy: password\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadEventConfig(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadEventConfigRejectsNonFiniteGoal(t *testing.T) {
	for _, goal := range []string{".nan", ".inf", "-.inf", "0", "-5"} {
		path := filepath.Join(t.TempDir(), "event.yaml")
		if err := os.WriteFile(path, []byte("goal: "+goal+"\n"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if ev, err := LoadEventConfig(path); err == nil {
			t.Fatalf("goal %s: expected validation error, got goal=%v", goal, ev.Goal)
		}
	}
}

func TestLoadConfigSessionLifetime(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("EXTRACTION_PROVIDER", "none")
	t.Setenv("EVENT_CONFIG_PATH", "")
	t.Setenv("SESSION_LIFETIME_HOURS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.SessionLifetime != 30*24*time.Hour {
		t.Fatalf("default SessionLifetime = %v", cfg.SessionLifetime)
	}

	t.Setenv("SESSION_LIFETIME_HOURS", "96")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.SessionLifetime != 96*time.Hour {
		t.Fatalf("SessionLifetime = %v, want 96h", cfg.SessionLifetime)
	}

	t.Setenv("SESSION_LIFETIME_HOURS", "0")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for a zero session lifetime")
	}
}
