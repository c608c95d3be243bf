package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PRICING_SQLITE_DSN", "")
	t.Setenv("PRICING_SESSION_TTL", "")
	t.Setenv("PRICING_AUTOSAVE_DEBOUNCE", "")
	t.Setenv("PRICING_DATA_VERSION", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.SQLiteDSN != "file:pricing.db?_foreign_keys=on" {
		t.Fatalf("unexpected default DSN: %s", cfg.SQLiteDSN)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("unexpected default session TTL: %s", cfg.SessionTTL)
	}
	if cfg.AutosaveDebounce != 2*time.Second {
		t.Fatalf("unexpected default autosave debounce: %s", cfg.AutosaveDebounce)
	}
	if cfg.DataVersion != "2.1" {
		t.Fatalf("unexpected default data version: %s", cfg.DataVersion)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PRICING_SQLITE_DSN", "file:elsewhere.db")
	t.Setenv("PRICING_SESSION_TTL", "1h")
	t.Setenv("PRICING_AUTOSAVE_DEBOUNCE", "1500ms")
	t.Setenv("PRICING_DATA_VERSION", "3.0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.SQLiteDSN != "file:elsewhere.db" {
		t.Fatalf("DSN override not applied: %s", cfg.SQLiteDSN)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("session TTL override not applied: %s", cfg.SessionTTL)
	}
	if cfg.AutosaveDebounce != 1500*time.Millisecond {
		t.Fatalf("debounce override not applied: %s", cfg.AutosaveDebounce)
	}
	if cfg.DataVersion != "3.0" {
		t.Fatalf("data version override not applied: %s", cfg.DataVersion)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("PRICING_SESSION_TTL", "soon")
	t.Setenv("PRICING_AUTOSAVE_DEBOUNCE", "-2s")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid durations")
	}
}
