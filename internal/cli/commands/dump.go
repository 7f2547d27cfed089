package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tablekit/chdump/internal/dumper"
	"github.com/tablekit/chdump/internal/introspection"
	"github.com/tablekit/chdump/internal/inventory"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand() *cobra.Command {
	var (
		databases    []string
		snapshotPath string
		skipExtract  bool
	)

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Snapshot a live ClickHouse server and extract it",
		Long: `Introspect system.tables on a live ClickHouse server, write the result
as an inventory snapshot file, then fan it out to the per-engine layout
exactly like extract. Tables with unsupported engines are skipped and
reported in the summary.`,
		Example: `  # Dump everything from the default server
  chdump dump

  # Specific databases from a remote host
  chdump dump --host ch.internal --port 9440 --databases analytics,billing

  # Snapshot only, no per-engine fan-out
  chdump dump --skip-extract`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			return runDump(cmd, cmdCtx, databases, snapshotPath, skipExtract)
		},
	}

	cmd.Flags().StringSliceVar(&databases, "databases", nil, "Databases to dump (default: all non-system databases)")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Path for the inventory snapshot (default: the configured input path)")
	cmd.Flags().BoolVar(&skipExtract, "skip-extract", false, "Write the snapshot file only, skip the per-engine layout")
	return cmd
}

func runDump(cmd *cobra.Command, cmdCtx *CommandContext, databases []string, snapshotPath string, skipExtract bool) error {
	cfg := cmdCtx.Cfg
	ctx := cmd.Context()

	if snapshotPath == "" {
		snapshotPath = cfg.InputPath
	}

	opts := introspection.ConnectOptions{
		Host:     cfg.Connection.Host,
		Port:     cfg.Connection.Port,
		Database: cfg.Connection.Database,
		User:     cfg.Connection.User,
		Password: cfg.Connection.Password,
	}

	log := openRunLog(cfg, cmdCtx.Logger)
	defer log.Close()
	runID := log.Start("dump", opts.Addr())

	db, err := introspection.Connect(ctx, opts)
	if err != nil {
		log.Finish(runID, err, 0, 0)
		return err
	}
	defer db.Close()

	intr := introspection.New(db, cmdCtx.Logger)
	intr.Databases = databases

	doc, err := intr.Snapshot(ctx)
	if err != nil {
		log.Finish(runID, err, 0, 0)
		return err
	}

	if err := inventory.Write(snapshotPath, doc); err != nil {
		log.Finish(runID, err, 0, 0)
		return err
	}
	cmdCtx.Renderer.Printf("Wrote snapshot of %d tables to %s\n", len(doc.Data), snapshotPath)

	engines := len(doc.Engines())
	if !skipExtract {
		d := dumper.New(cmdCtx.Logger)
		result, err := d.Dump(doc, dumper.Options{
			OutputDir:    cfg.OutputDir,
			ManifestPath: cfg.ManifestPath,
		})
		if err != nil {
			log.Finish(runID, err, 0, 0)
			return err
		}
		cmdCtx.Renderer.Printf("Extracted to %s (manifest: %s)\n", result.OutputDir, result.ManifestPath)
	}

	log.Finish(runID, nil, len(doc.Data), engines)
	renderEngineSummary(cmdCtx, intr)
	return nil
}

// renderEngineSummary prints per-engine dumped/skipped counts.
func renderEngineSummary(cmdCtx *CommandContext, intr *introspection.Introspector) {
	names := make(map[string]struct{})
	for engine := range intr.DumpedEngines {
		names[engine] = struct{}{}
	}
	for engine := range intr.SkippedEngines {
		names[engine] = struct{}{}
	}
	if len(names) == 0 {
		return
	}

	sorted := make([]string, 0, len(names))
	for engine := range names {
		sorted = append(sorted, engine)
	}
	sort.Strings(sorted)

	rows := make([][]string, 0, len(sorted))
	for _, engine := range sorted {
		rows = append(rows, []string{
			engine,
			fmt.Sprintf("%d", intr.DumpedEngines[engine]),
			fmt.Sprintf("%d", intr.SkippedEngines[engine]),
		})
	}

	cmdCtx.Renderer.Table([]string{"Engine", "Dumped", "Skipped"}, rows)
}
