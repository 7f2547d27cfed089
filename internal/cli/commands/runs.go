package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent extract and dump runs",
		Long:  `List recent runs recorded in the local state database, newest first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			return runRuns(cmdCtx, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

func runRuns(cmdCtx *CommandContext, limit int) error {
	log := openRunLog(cmdCtx.Cfg, cmdCtx.Logger)
	defer log.Close()
	if log.store == nil {
		return fmt.Errorf("run history unavailable at %s", cmdCtx.Cfg.StatePath)
	}

	runs, err := log.store.ListRuns(limit)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if len(runs) == 0 {
		r.Println("No runs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		duration := ""
		if run.CompletedAt != nil {
			duration = run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			run.StartedAt.Format(time.RFC3339),
			run.Command,
			run.Source,
			string(run.Status),
			fmt.Sprintf("%d", run.Tables),
			fmt.Sprintf("%d", run.Engines),
			duration,
		})
	}

	r.Table([]string{"Started", "Command", "Source", "Status", "Tables", "Engines", "Duration"}, rows)
	return nil
}
