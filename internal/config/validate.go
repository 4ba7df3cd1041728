package config

import (
	"fmt"
	"strings"
	"time"

	"fasttrack/internal/logging"
)

// Themes understood by the terminal timer.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

const (
	minTick = 100 * time.Millisecond
	maxTick = 10 * time.Second
)

// Normalize trims and lower-cases string settings, then rejects values the
// application cannot start with.
func Normalize(cfg Config) (Config, error) {
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))
	cfg.HTTPAddr = strings.TrimSpace(cfg.HTTPAddr)
	cfg.DefaultMethod = strings.TrimSpace(cfg.DefaultMethod)

	if _, _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, fmt.Errorf("log.level: %w", err)
	}
	if cfg.Tick < minTick || cfg.Tick > maxTick {
		return cfg, fmt.Errorf("timer.tick must be between %s and %s", minTick, maxTick)
	}
	if cfg.Theme != ThemeLight && cfg.Theme != ThemeDark {
		return cfg, fmt.Errorf("ui.theme must be %q or %q", ThemeLight, ThemeDark)
	}
	if cfg.HTTPAddr == "" {
		return cfg, fmt.Errorf("http.addr must not be empty")
	}
	return cfg, nil
}
