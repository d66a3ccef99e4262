package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the oracle server configuration.
type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/fivefacts.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:""`
}

// PlayConfig is the terminal player configuration.
type PlayConfig struct {
	OracleURL string     `env:"ORACLE_URL" envDefault:"http://localhost:8080"`
	DataDir   string     `env:"DATA_DIR" envDefault:"data"`
	Language  string     `env:"LANGUAGE" envDefault:"en"`
	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"WARN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}

func LoadPlay() (*PlayConfig, error) {
	_ = godotenv.Load()
	cfg, err := env.ParseAs[PlayConfig]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
