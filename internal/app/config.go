package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPath string

	// Explicit executable overrides; empty means search PATH.
	FlexPath  string
	BisonPath string

	// Optional semver lower bounds, e.g. "2.5.4".
	MinFlexVersion  string
	MinBisonVersion string

	// Required tools upgrade discovery and probe failures to hard errors.
	RequireFlex  bool
	RequireBison bool

	// PlanOnly prints the resolved commands without executing anything.
	PlanOnly bool

	// Watch re-runs generation whenever a rule input changes.
	Watch bool

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	return &cfg, nil
}
