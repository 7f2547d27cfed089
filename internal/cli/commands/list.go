package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tablekit/chdump/internal/cli/output"
	"github.com/tablekit/chdump/internal/inventory"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tables in an inventory file",
		Long: `Load an inventory file and list its tables with their engine and a
preview of the creation statement.

Use --output to override the format: auto, text, markdown, json`,
		Example: `  # List tables.json
  chdump list

  # List a specific snapshot as JSON
  chdump list --input snapshots/prod.json --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			return runList(cmdCtx)
		},
	}
}

func runList(cmdCtx *CommandContext) error {
	doc, err := inventory.Load(cmdCtx.Cfg.InputPath)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(doc)
	}

	r.Header(1, fmt.Sprintf("Tables (%d total, %d engines)", len(doc.Data), len(doc.Engines())))

	rows := make([][]string, 0, len(doc.Data))
	for _, rec := range doc.Data {
		name := rec.Name
		if rec.Database != "" {
			name = rec.Database + "." + rec.Name
		}
		rows = append(rows, []string{rec.Engine, name, inventory.Preview(rec.CreateTableQuery)})
	}
	r.Table([]string{"Engine", "Table", "Definition"}, rows)
	return nil
}
