package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablekit/chdump/internal/diff"
	"github.com/tablekit/chdump/internal/inventory"
)

func TestGenerateSQL(t *testing.T) {
	create := inventory.TableRecord{
		Database:         "analytics",
		Engine:           "MergeTree",
		Name:             "events",
		CreateTableQuery: "CREATE TABLE analytics.events (id UInt64) ENGINE = MergeTree ORDER BY id",
	}
	replacement := inventory.TableRecord{
		Engine:           "Log",
		Name:             "audit",
		CreateTableQuery: "CREATE TABLE audit (msg String, ts DateTime) ENGINE = Log",
	}

	plan := &diff.Plan{Actions: []diff.Action{
		{Type: diff.ActionCreateTable, Table: "analytics.events", Record: &create},
		{Type: diff.ActionDropTable, Table: "billing.legacy"},
		{Type: diff.ActionReplaceTable, Table: "audit", Record: &replacement},
	}}

	statements, err := NewGenerator().GenerateSQL(plan)
	require.NoError(t, err)

	assert.Equal(t, []string{
		create.CreateTableQuery,
		"DROP TABLE billing.legacy",
		"DROP TABLE audit",
		replacement.CreateTableQuery,
	}, statements)
}

func TestGenerateActionSQL_Invalid(t *testing.T) {
	g := NewGenerator()

	_, err := g.GenerateActionSQL(diff.Action{Type: diff.ActionCreateTable, Table: "t"})
	require.Error(t, err)

	_, err = g.GenerateActionSQL(diff.Action{Type: "ALTER_COLUMN", Table: "t"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported action type")
}
