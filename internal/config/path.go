package config

import (
	"os"
	"path/filepath"
)

// DefaultPath returns ~/.config/fasttrack/config.yaml (or a cwd fallback).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".config", "fasttrack", "config.yaml")
	}
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, "fasttrack-config.yaml")
}
