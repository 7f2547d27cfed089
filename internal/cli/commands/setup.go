// Package commands implements the chdump subcommands.
package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tablekit/chdump/internal/cli/config"
	"github.com/tablekit/chdump/internal/cli/output"
	"github.com/tablekit/chdump/internal/state"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds the per-command dependency bundle from the
// loaded configuration and the command's writers.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the loaded configuration, falling back to defaults
// when a command runs outside the root command's PersistentPreRunE
// (mostly in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		InputPath:    config.DefaultInputPath,
		OutputDir:    config.DefaultOutputDir,
		ManifestPath: config.DefaultManifestPath,
		StatePath:    config.DefaultStateFile,
		OutputFormat: config.DefaultOutput,
		Connection: config.ConnectionConfig{
			Host: config.DefaultHost,
			Port: config.DefaultPort,
		},
	}
}

// runLog records run history. History is best-effort: every failure is a
// logged warning, never a command failure.
type runLog struct {
	store  state.Store
	logger *slog.Logger
}

// openRunLog opens the state database at cfg.StatePath, creating its
// directory on demand. The returned runLog is usable even when opening
// failed; it just logs and drops records.
func openRunLog(cfg *config.Config, logger *slog.Logger) *runLog {
	l := &runLog{logger: logger}

	if dir := filepath.Dir(cfg.StatePath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			logger.Warn("run history disabled: cannot create state directory",
				slog.String("dir", dir), slog.Any("error", err))
			return l
		}
	}

	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		logger.Warn("run history disabled", slog.Any("error", err))
		return l
	}
	if err := store.InitSchema(); err != nil {
		logger.Warn("run history disabled", slog.Any("error", err))
		store.Close()
		return l
	}

	l.store = store
	return l
}

// Start records a new running entry and returns its ID, or "" when the
// store is unavailable.
func (l *runLog) Start(command, source string) string {
	if l.store == nil {
		return ""
	}
	run, err := l.store.CreateRun(command, source)
	if err != nil {
		l.logger.Warn("failed to record run start", slog.Any("error", err))
		return ""
	}
	return run.ID
}

// Finish completes the entry with the command's outcome.
func (l *runLog) Finish(id string, runErr error, tables, engines int) {
	if l.store == nil || id == "" {
		return
	}

	status := state.RunStatusCompleted
	errMsg := ""
	if runErr != nil {
		status = state.RunStatusFailed
		errMsg = runErr.Error()
	}

	if err := l.store.CompleteRun(id, status, tables, engines, errMsg); err != nil {
		l.logger.Warn("failed to record run completion", slog.Any("error", err))
	}
}

// Close releases the underlying store.
func (l *runLog) Close() {
	if l.store != nil {
		l.store.Close()
	}
}
