package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultJWTSecret подставляется, когда jwt_secret не задан. Токены,
// подписанные им, может подделать кто угодно, поэтому он годится
// только для локального запуска.
const DefaultJWTSecret = "your-secret-key"

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`
	Graph struct {
		// Пустой BaseURL означает локальный статический граф.
		BaseURL         string `yaml:"base_url"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"graph"`
	Feed struct {
		MaxPageSize int `yaml:"max_page_size"`
	} `yaml:"feed"`
}

// Load читает конфигурацию из yaml-файла и подставляет значения по
// умолчанию для незаполненных полей.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = DefaultJWTSecret
		slog.Warn("jwt_secret is not set, falling back to the default dev secret; tokens are forgeable")
	}
	if cfg.Graph.CacheTTLSeconds <= 0 {
		cfg.Graph.CacheTTLSeconds = 30
	}
	if cfg.Feed.MaxPageSize <= 0 {
		cfg.Feed.MaxPageSize = 100
	}
	return cfg, nil
}
