package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPaths []string // .hcl or .toml files and directories

	LogFormat  string
	LogLevel   string
	StatusPort int
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("at least one configuration path is required")
	}
	return &cfg, nil
}
