package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tablekit/chdump/internal/diff"
	"github.com/tablekit/chdump/internal/introspection"
	"github.com/tablekit/chdump/internal/inventory"
	"github.com/tablekit/chdump/internal/sqlgen"
)

// NewPlanCommand creates the plan command.
func NewPlanCommand() *cobra.Command {
	var (
		desiredPath string
		currentPath string
		outputFile  string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the DDL needed to match the desired inventory",
		Long: `Compare a desired inventory against the current state and print the
ordered actions and DDL statements that would reconcile them.

The current state comes from a live server by default; pass
--current-file to diff two inventory files offline.`,
		Example: `  # Diff tables.json against the default server
  chdump plan

  # Offline diff of two snapshots
  chdump plan --desired wanted.json --current-file actual.json

  # Write the statements to a file for review
  chdump plan --ddl-out changes.sql`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)

			plan, err := buildPlan(cmd, cmdCtx, desiredPath, currentPath)
			if err != nil {
				return err
			}

			statements, err := sqlgen.NewGenerator().GenerateSQL(plan)
			if err != nil {
				return err
			}

			renderPlan(cmdCtx, plan, statements)

			if outputFile != "" {
				ddl := strings.Join(statements, ";\n\n")
				if len(statements) > 0 {
					ddl += ";\n"
				}
				if err := os.WriteFile(outputFile, []byte(ddl), 0644); err != nil {
					return fmt.Errorf("failed to write DDL file: %w", err)
				}
				cmdCtx.Renderer.Printf("Wrote %d statements to %s\n", len(statements), outputFile)
			}
			return nil
		},
	}

	addPlanFlags(cmd, &desiredPath, &currentPath)
	cmd.Flags().StringVar(&outputFile, "ddl-out", "", "Write the generated DDL statements to a file")
	return cmd
}

func addPlanFlags(cmd *cobra.Command, desiredPath, currentPath *string) {
	cmd.Flags().StringVar(desiredPath, "desired", "", "Desired inventory file (default: the configured input path)")
	cmd.Flags().StringVar(currentPath, "current-file", "", "Current inventory file; when set no server connection is made")
}

// buildPlan loads the desired inventory, obtains the current one from a
// file or a live snapshot, and diffs them.
func buildPlan(cmd *cobra.Command, cmdCtx *CommandContext, desiredPath, currentPath string) (*diff.Plan, error) {
	cfg := cmdCtx.Cfg
	if desiredPath == "" {
		desiredPath = cfg.InputPath
	}

	desired, err := inventory.Load(desiredPath)
	if err != nil {
		return nil, err
	}

	var current *inventory.Document
	if currentPath != "" {
		current, err = inventory.Load(currentPath)
		if err != nil {
			return nil, err
		}
	} else {
		db, err := introspection.Connect(cmd.Context(), introspection.ConnectOptions{
			Host:     cfg.Connection.Host,
			Port:     cfg.Connection.Port,
			Database: cfg.Connection.Database,
			User:     cfg.Connection.User,
			Password: cfg.Connection.Password,
		})
		if err != nil {
			return nil, err
		}
		defer db.Close()

		current, err = introspection.New(db, cmdCtx.Logger).Snapshot(cmd.Context())
		if err != nil {
			return nil, err
		}
	}

	return diff.NewDiffer().Plan(desired, current)
}

// renderPlan prints the action list and statement count.
func renderPlan(cmdCtx *CommandContext, plan *diff.Plan, statements []string) {
	r := cmdCtx.Renderer

	if len(plan.Actions) == 0 {
		r.Println("No changes detected. The schema is up-to-date.")
		return
	}

	r.Header(1, fmt.Sprintf("Plan: %d actions", len(plan.Actions)))
	for n, action := range plan.Actions {
		r.Printf("%d. [%s] %s\n", n+1, action.Type, action.Reason)
	}
	r.Printf("\n%d DDL statements to execute.\n", len(statements))
}
