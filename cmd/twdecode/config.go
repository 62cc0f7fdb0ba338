package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// config is read from the environment, after loading .env if present.
type config struct {
	LogLevel  string `env:"TWDECODE_LOG_LEVEL,default=info"`
	Format    string `env:"TWDECODE_FORMAT,default=json"`
	BodyLimit int    `env:"TWDECODE_BODY_LIMIT,default=500"`
	Sentinel  string `env:"TWDECODE_STREAM_SENTINEL"`

	Accounts   string `env:"TWITTER_ACCOUNTS"`
	Proxy      string `env:"TWITTER_PROXY"`
	SessionDir string `env:"TWDECODE_SESSION_DIR"`
}

func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return config{}, fmt.Errorf("decode env: %w", err)
	}
	return cfg, nil
}

func (c config) validate() error {
	if c.Format != "json" && c.Format != "yaml" {
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	levels := map[string]slog.Level{
		"ERROR":   slog.LevelError,
		"INFO":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"WARN":    slog.LevelWarn,
	}
	l, ok := levels[strings.ToUpper(level)]
	if !ok {
		l = slog.LevelInfo
	}
	return l
}
