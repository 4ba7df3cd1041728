package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fasttrack/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: Debug
tracker:
  default_method: 18-6
timer:
  tick: 250ms
http:
  addr: ":9090"
metrics:
  enabled: false
ui:
  theme: dark
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		LogLevel:       "debug",
		DefaultMethod:  "18-6",
		Tick:           250 * time.Millisecond,
		HTTPAddr:       ":9090",
		MetricsEnabled: false,
		Theme:          ThemeDark,
	}, cfg)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FASTTRACK_UI_THEME", "dark")
	t.Setenv("FASTTRACK_TIMER_TICK", "2s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, cfg.Theme)
	assert.Equal(t, 2*time.Second, cfg.Tick)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "timer:\n  tick: 1ms\n")
	_, err := Load(path)
	assert.Error(t, err)

	path = writeConfig(t, "log: [unclosed\n")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	base := DefaultConfig()

	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"upper theme", func(c *Config) { c.Theme = " DARK " }, true},
		{"tick too small", func(c *Config) { c.Tick = 50 * time.Millisecond }, false},
		{"tick too large", func(c *Config) { c.Tick = time.Minute }, false},
		{"bad theme", func(c *Config) { c.Theme = "neon" }, false},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, false},
		{"empty addr", func(c *Config) { c.HTTPAddr = "  " }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			_, err := Normalize(cfg)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "config.yaml", filepath.Base(DefaultPath()))
}

func TestDefaultMethodMatchesCatalogue(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, domain.DefaultMethodID, cfg.DefaultMethod)
	_, ok := domain.FindMethod(domain.DefaultMethods(), cfg.DefaultMethod)
	assert.True(t, ok)
}
