package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"fasttrack/internal/domain"
)

// Config holds the runtime settings shared by the CLI, the terminal timer
// and the HTTP server. Fasting state itself is never stored here.
type Config struct {
	LogLevel       string
	DefaultMethod  string
	Tick           time.Duration
	HTTPAddr       string
	MetricsEnabled bool
	Theme          string
}

const (
	keyLogLevel       = "log.level"
	keyDefaultMethod  = "tracker.default_method"
	keyTick           = "timer.tick"
	keyHTTPAddr       = "http.addr"
	keyMetricsEnabled = "metrics.enabled"
	keyTheme          = "ui.theme"

	envPrefix = "FASTTRACK"
)

var (
	// DefaultTick is how often timers refresh when not configured.
	DefaultTick = time.Second
	// DefaultHTTPAddr binds the API to loopback only.
	DefaultHTTPAddr = "127.0.0.1:7070"
)

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		LogLevel:       "warn",
		DefaultMethod:  domain.DefaultMethodID,
		Tick:           DefaultTick,
		HTTPAddr:       DefaultHTTPAddr,
		MetricsEnabled: true,
		Theme:          ThemeLight,
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault(keyLogLevel, d.LogLevel)
	v.SetDefault(keyDefaultMethod, d.DefaultMethod)
	v.SetDefault(keyTick, d.Tick)
	v.SetDefault(keyHTTPAddr, d.HTTPAddr)
	v.SetDefault(keyMetricsEnabled, d.MetricsEnabled)
	v.SetDefault(keyTheme, d.Theme)
}

// Load reads the YAML file at path, applies FASTTRACK_* environment
// overrides and validates the result. A missing file yields the defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					return Config{}, fmt.Errorf("read config: %w", err)
				}
			}
		}
	}

	cfg := Config{
		LogLevel:       v.GetString(keyLogLevel),
		DefaultMethod:  v.GetString(keyDefaultMethod),
		Tick:           v.GetDuration(keyTick),
		HTTPAddr:       v.GetString(keyHTTPAddr),
		MetricsEnabled: v.GetBool(keyMetricsEnabled),
		Theme:          v.GetString(keyTheme),
	}
	return Normalize(cfg)
}
