// Package introspection builds inventory snapshots from a live ClickHouse
// server by querying its system tables.
package introspection

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tablekit/chdump/internal/inventory"
)

// systemDatabases are never included in a snapshot.
var systemDatabases = []string{"system", "information_schema", "INFORMATION_SCHEMA"}

// Introspector reads table definitions from system.tables.
type Introspector struct {
	db     *sql.DB
	logger *slog.Logger

	// Databases restricts the snapshot to the given databases when
	// non-empty. System databases are always excluded.
	Databases []string

	// Per-engine statistics from the last Snapshot call.
	DumpedEngines  map[string]int
	SkippedEngines map[string]int
}

// New creates an Introspector over an open connection. A nil logger
// discards output.
func New(db *sql.DB, logger *slog.Logger) *Introspector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Introspector{
		db:             db,
		logger:         logger,
		DumpedEngines:  make(map[string]int),
		SkippedEngines: make(map[string]int),
	}
}

// Snapshot queries system.tables and returns an inventory document of all
// tables with a supported engine, ordered by (engine, name) so snapshots
// are stable across runs. Tables with unsupported engines are skipped and
// counted in SkippedEngines.
func (i *Introspector) Snapshot(ctx context.Context) (*inventory.Document, error) {
	i.DumpedEngines = make(map[string]int)
	i.SkippedEngines = make(map[string]int)

	query, args := i.buildQuery()

	rows, err := i.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query system.tables: %w", err)
	}
	defer rows.Close()

	doc := &inventory.Document{Data: []inventory.TableRecord{}}
	for rows.Next() {
		var db, name, engine, engineFull, createQuery string
		if err := rows.Scan(&db, &name, &engine, &engineFull, &createQuery); err != nil {
			return nil, fmt.Errorf("failed to scan table row: %w", err)
		}

		parsed, err := ParseEngine(engine, engineFull)
		if err != nil {
			i.SkippedEngines[engine]++
			i.logger.Debug("skipping table with unsupported engine",
				slog.String("database", db),
				slog.String("table", name),
				slog.String("engine", engine))
			continue
		}

		doc.Data = append(doc.Data, inventory.TableRecord{
			Database:         db,
			Engine:           parsed.Name,
			Name:             name,
			CreateTableQuery: createQuery,
		})
		i.DumpedEngines[engine]++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate system.tables: %w", err)
	}

	i.logger.Info("introspected tables",
		slog.Int("tables", len(doc.Data)),
		slog.Int("engines", len(i.DumpedEngines)))
	return doc, nil
}

// buildQuery assembles the system.tables query with the database filters.
func (i *Introspector) buildQuery() (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}

	sb.WriteString(`SELECT database, name, engine, engine_full, create_table_query
FROM system.tables
WHERE database NOT IN (`)
	for n, db := range systemDatabases {
		if n > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("?")
		args = append(args, db)
	}
	sb.WriteString(")")

	if len(i.Databases) > 0 {
		sb.WriteString(" AND database IN (")
		for n, db := range i.Databases {
			if n > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("?")
			args = append(args, db)
		}
		sb.WriteString(")")
	}

	sb.WriteString("\nORDER BY engine, name")
	return sb.String(), args
}
