package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	CasePath string // hcl case file or directory
	OutDir   string // report artifacts

	LogFormat    string
	LogLevel     string
	StatusPort   int
	Workers      int
	ValidateOnly bool
	SolverPath   string // overrides the case's solver executable
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.CasePath == "" {
		return nil, errors.New("CasePath is a required configuration field and cannot be empty")
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "out"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &cfg, nil
}
