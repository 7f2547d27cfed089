// Package state records dump run history in a local SQLite database.
//
// History is best-effort bookkeeping: commands log and continue when the
// store is unavailable rather than failing the dump itself.
package state

import "time"

// DefaultStatePath is where run history lives unless configured otherwise.
const DefaultStatePath = ".chdump/state.db"

// RunStatus is the lifecycle state of a recorded run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded extract or dump invocation.
type Run struct {
	ID string
	// Command is the subcommand that produced the run ("extract", "dump").
	Command string
	// Source is the inventory path or server address that was read.
	Source      string
	Status      RunStatus
	Tables      int
	Engines     int
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// Store is the run history interface.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	CreateRun(command, source string) (*Run, error)
	CompleteRun(id string, status RunStatus, tables, engines int, errMsg string) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)
}
