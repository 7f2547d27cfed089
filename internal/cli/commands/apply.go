package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tablekit/chdump/internal/executor"
	"github.com/tablekit/chdump/internal/introspection"
	"github.com/tablekit/chdump/internal/sqlgen"
)

// NewApplyCommand creates the apply command.
func NewApplyCommand() *cobra.Command {
	var (
		desiredPath string
		currentPath string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the planned DDL to the server",
		Long: `Compute the plan like the plan command, then execute the generated DDL
statements against the server, in order, stopping at the first failure.
Statements already executed are not rolled back.`,
		Example: `  # Reconcile the server with tables.json
  chdump apply

  # Show what would run without executing
  chdump apply --dry-run`,
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
			if len(statements) == 0 {
				return nil
			}
			if dryRun {
				cmdCtx.Renderer.Println("Dry run, nothing executed.")
				return nil
			}

			cfg := cmdCtx.Cfg
			db, err := introspection.Connect(cmd.Context(), introspection.ConnectOptions{
				Host:     cfg.Connection.Host,
				Port:     cfg.Connection.Port,
				Database: cfg.Connection.Database,
				User:     cfg.Connection.User,
				Password: cfg.Connection.Password,
			})
			if err != nil {
				return err
			}
			defer db.Close()

			if err := executor.New(db, cmdCtx.Logger).Execute(cmd.Context(), statements); err != nil {
				return fmt.Errorf("apply failed: %w", err)
			}

			cmdCtx.Renderer.Printf("Applied %d statements.\n", len(statements))
			return nil
		},
	}

	addPlanFlags(cmd, &desiredPath, &currentPath)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without executing it")
	return cmd
}
