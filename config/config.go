package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the process configuration: built-in defaults, optionally
// overlaid by a YAML file, then by environment variables.
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Server    ServerConfig    `yaml:"server"`
	LogLevel  string          `yaml:"log_level"`
}

type GeneratorConfig struct {
	OrganizationCount int `yaml:"organization_count"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load builds the configuration. A missing file is fine; a malformed one
// is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Generator: GeneratorConfig{
			OrganizationCount: 25,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		LogLevel: "info",
	}

	// Load from YAML if exists
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	// Override from environment
	if v := os.Getenv("TELEVIEW_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TELEVIEW_ORG_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Generator.OrganizationCount = n
		}
	}
	if v := os.Getenv("TELEVIEW_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = []string{v}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}
