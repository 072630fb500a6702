package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "mongo", "memory":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Ingest.RateLimitMax <= 0 || c.Ingest.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit must be positive (max=%d window=%s)", c.Ingest.RateLimitMax, c.Ingest.RateLimitWindow)
	}
	if c.Ingest.DedupWindow <= 0 || c.Ingest.DedupRetention < c.Ingest.DedupWindow {
		return fmt.Errorf("dedup retention (%s) must cover the dedup window (%s)", c.Ingest.DedupRetention, c.Ingest.DedupWindow)
	}
	if c.Ingest.MaxBodyLength <= 0 {
		return fmt.Errorf("max body length must be positive")
	}
	if c.Dialogue.SiteLimit <= 0 {
		return fmt.Errorf("dialogue site limit must be positive")
	}
	return nil
}

// GetAllSettings returns the non-secret settings for diagnostics.
func GetAllSettings() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"app_version":               Global.App.Version,
		"app_debug":                 Global.App.Debug,
		"db_driver":                 Global.Database.Driver,
		"valkey_enabled":            Global.Database.ValkeyEnabled,
		"rate_limit_max":            Global.Ingest.RateLimitMax,
		"rate_limit_window":         Global.Ingest.RateLimitWindow.String(),
		"dedup_window":              Global.Ingest.DedupWindow.String(),
		"dialogue_site_window":      Global.Dialogue.SiteWindow.String(),
		"dialogue_reference_window": Global.Dialogue.ReferenceWindow.String(),
		"notifier_enabled":          Global.Notifier.Enabled(),
	}
}

// Helpers
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		vLower := strings.ToLower(v)
		return vLower == "1" || vLower == "true" || vLower == "yes" || vLower == "on"
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
