package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPath string // .hcl file or directory of .hcl files

	LogFormat   string
	LogLevel    string
	WorkerCount int
	Watch       bool

	// TempDir holds the per-asset workspaces; empty means the system default.
	TempDir string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}
	if cfg.WorkerCount < 0 {
		return nil, errors.New("WorkerCount must not be negative")
	}
	return &cfg, nil
}
