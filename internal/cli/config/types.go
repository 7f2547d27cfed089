// Package config loads chdump configuration from flags, environment
// variables, and an optional YAML config file.
package config

import (
	"context"
	"io"
	"log/slog"
)

// Default configuration values. The extract defaults mirror the original
// snapshot script so a bare `chdump extract` needs no configuration.
const (
	DefaultInputPath    = "tables.json"
	DefaultOutputDir    = "dump"
	DefaultManifestPath = "tables.txt"
	DefaultStateFile    = ".chdump/state.db"
	DefaultOutput       = "auto" // auto-detect: TTY=text, non-TTY=markdown

	DefaultHost = "localhost"
	DefaultPort = 9000
)

// Config holds all CLI configuration options.
type Config struct {
	InputPath    string `koanf:"input"`
	OutputDir    string `koanf:"output_dir"`
	ManifestPath string `koanf:"manifest"`
	StatePath    string `koanf:"state_path"`
	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`

	Connection ConnectionConfig `koanf:"connection"`
}

// ConnectionConfig holds ClickHouse connection settings for the commands
// that talk to a live server.
type ConnectionConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Database string `koanf:"database"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
}

// loggerKey stores the logger in the command context.
type loggerKey struct{}

// WithLogger returns a context carrying the logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context, falling back
// to a discard logger.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
