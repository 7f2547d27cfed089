// Package sqlgen renders diff plans into executable DDL statements.
package sqlgen

import (
	"fmt"

	"github.com/tablekit/chdump/internal/diff"
)

// Generator turns plan actions into DDL.
type Generator struct{}

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateSQL renders every action in the plan, in order. A replace
// expands to a drop followed by a create.
func (g *Generator) GenerateSQL(plan *diff.Plan) ([]string, error) {
	var statements []string
	for _, action := range plan.Actions {
		stmts, err := g.GenerateActionSQL(action)
		if err != nil {
			return nil, fmt.Errorf("failed to generate SQL for %s %s: %w", action.Type, action.Table, err)
		}
		statements = append(statements, stmts...)
	}
	return statements, nil
}

// GenerateActionSQL renders a single action. Creation statements come
// verbatim from the inventory record; only drops are synthesized.
func (g *Generator) GenerateActionSQL(action diff.Action) ([]string, error) {
	switch action.Type {
	case diff.ActionCreateTable:
		if action.Record == nil {
			return nil, fmt.Errorf("create action has no record")
		}
		return []string{action.Record.CreateTableQuery}, nil

	case diff.ActionDropTable:
		return []string{DropTable(action.Table)}, nil

	case diff.ActionReplaceTable:
		if action.Record == nil {
			return nil, fmt.Errorf("replace action has no record")
		}
		return []string{DropTable(action.Table), action.Record.CreateTableQuery}, nil

	default:
		return nil, fmt.Errorf("unsupported action type: %s", action.Type)
	}
}

// DropTable renders a DROP TABLE statement for a qualified table name.
func DropTable(table string) string {
	return fmt.Sprintf("DROP TABLE %s", table)
}
