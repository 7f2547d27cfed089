// Package executor applies generated DDL statements to a live server.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
)

// Executor runs DDL statements sequentially over an open connection.
type Executor struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an Executor. A nil logger discards output.
func New(db *sql.DB, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Executor{db: db, logger: logger}
}

// Execute applies the statements in order and stops at the first failure.
// Statements already executed are not rolled back; ClickHouse DDL is not
// transactional.
func (e *Executor) Execute(ctx context.Context, statements []string) error {
	for n, stmt := range statements {
		e.logger.Info("executing statement",
			slog.Int("n", n+1),
			slog.Int("total", len(statements)))
		if _, err := e.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d/%d failed: %w", n+1, len(statements), err)
		}
	}
	return nil
}
