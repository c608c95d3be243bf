package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the pricing console.
type Config struct {
	SQLiteDSN        string
	SessionTTL       time.Duration
	AutosaveDebounce time.Duration
	DataVersion      string
}

// Load parses configuration values from the current process environment.
//
// Every value has a sensible default; invalid entries are accumulated and
// reported together so the operator can fix them in one pass.
func Load() (Config, error) {
	cfg := Config{
		SQLiteDSN:        "file:pricing.db?_foreign_keys=on",
		SessionTTL:       24 * time.Hour,
		AutosaveDebounce: 2 * time.Second,
		DataVersion:      "2.1",
	}

	invalid := make([]string, 0, 2)

	if dsn := strings.TrimSpace(os.Getenv("PRICING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("PRICING_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "PRICING_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if debounceValue := strings.TrimSpace(os.Getenv("PRICING_AUTOSAVE_DEBOUNCE")); debounceValue != "" {
		debounce, err := time.ParseDuration(debounceValue)
		if err != nil || debounce <= 0 {
			invalid = append(invalid, "PRICING_AUTOSAVE_DEBOUNCE")
		} else {
			cfg.AutosaveDebounce = debounce
		}
	}

	if version := strings.TrimSpace(os.Getenv("PRICING_DATA_VERSION")); version != "" {
		cfg.DataVersion = version
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
