package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/tablekit/chdump/internal/dumper"
	"github.com/tablekit/chdump/internal/inventory"
)

// NewExtractCommand creates the extract command.
func NewExtractCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Fan an inventory file out to per-engine SQL files",
		Long: `Read a table inventory file, group the tables by storage engine, and
write each table's creation statement to {output-dir}/{engine}/{name}.sql,
plus a flat manifest listing every table with a preview of its DDL.

Re-running merges into the existing layout: directories are reused and
files are overwritten, but stale files from earlier runs are not removed.`,
		Example: `  # Extract tables.json into dump/ and tables.txt
  chdump extract

  # Custom locations
  chdump extract --input snapshots/prod.json --output-dir schemas --manifest schemas.txt

  # Re-extract whenever the inventory file changes
  chdump extract --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			if err := runExtract(cmdCtx); err != nil {
				return err
			}
			if watch {
				return watchExtract(cmd.Context(), cmdCtx)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Re-run extraction when the input file changes")
	return cmd
}

// runExtract performs one extraction and records it in the run history.
func runExtract(cmdCtx *CommandContext) error {
	cfg := cmdCtx.Cfg

	log := openRunLog(cfg, cmdCtx.Logger)
	defer log.Close()
	runID := log.Start("extract", cfg.InputPath)

	result, err := extractInventory(cmdCtx)
	if err != nil {
		log.Finish(runID, err, 0, 0)
		return err
	}
	log.Finish(runID, nil, result.Tables, len(result.FilesByEngine))

	cmdCtx.Renderer.Printf("Extracted %d tables across %d engines to %s (manifest: %s)\n",
		result.Tables, len(result.FilesByEngine), result.OutputDir, result.ManifestPath)
	return nil
}

// extractInventory is the load -> classify -> layout -> manifest -> dump
// pipeline. Loading happens entirely before the first write, so a
// malformed input never leaves partial output behind.
func extractInventory(cmdCtx *CommandContext) (*dumper.Result, error) {
	cfg := cmdCtx.Cfg

	doc, err := inventory.Load(cfg.InputPath)
	if err != nil {
		return nil, err
	}

	d := dumper.New(cmdCtx.Logger)
	return d.Dump(doc, dumper.Options{
		OutputDir:    cfg.OutputDir,
		ManifestPath: cfg.ManifestPath,
	})
}

// isInputEvent reports whether a watcher event is a rewrite of the
// watched input file. Create counts as a rewrite because atomic writers
// replace the file instead of writing in place.
func isInputEvent(event fsnotify.Event, inputName string) bool {
	if filepath.Base(event.Name) != inputName {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// watchExtract re-runs the pipeline whenever the input file is rewritten.
// Extraction errors are reported and watching continues; only watcher
// failures or context cancellation end the loop.
func watchExtract(ctx context.Context, cmdCtx *CommandContext) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors and atomic writers
	// replace the file and would silently detach a file watch.
	inputDir := filepath.Dir(cmdCtx.Cfg.InputPath)
	if err := watcher.Add(inputDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", inputDir, err)
	}

	inputName := filepath.Base(cmdCtx.Cfg.InputPath)
	cmdCtx.Renderer.Printf("Watching %s for changes...\n", cmdCtx.Cfg.InputPath)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isInputEvent(event, inputName) {
				continue
			}
			cmdCtx.Logger.Debug("input changed, re-extracting",
				slog.String("event", event.Op.String()))
			if err := runExtract(cmdCtx); err != nil {
				fmt.Fprintf(cmdCtx.Renderer.ErrWriter(), "Error: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
