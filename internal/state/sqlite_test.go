package state

import (
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore()
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore()
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestSQLiteStore_InitSchemaIdempotent(t *testing.T) {
	store := setupTestStore(t)
	if err := store.InitSchema(); err != nil {
		t.Fatalf("second InitSchema should not fail: %v", err)
	}
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateRun("extract", "tables.json")
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	if run.ID == "" {
		t.Error("run ID should not be empty")
	}
	if run.Status != RunStatusRunning {
		t.Errorf("expected status running, got %q", run.Status)
	}

	if err := store.CompleteRun(run.ID, RunStatusCompleted, 12, 3, ""); err != nil {
		t.Fatalf("failed to complete run: %v", err)
	}

	got, err := store.GetRun(run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.Status != RunStatusCompleted {
		t.Errorf("expected status completed, got %q", got.Status)
	}
	if got.Tables != 12 || got.Engines != 3 {
		t.Errorf("expected 12 tables / 3 engines, got %d / %d", got.Tables, got.Engines)
	}
	if got.CompletedAt == nil {
		t.Error("completed_at should be set")
	}
	if got.Error != "" {
		t.Errorf("error should be empty, got %q", got.Error)
	}
}

func TestSQLiteStore_FailedRunKeepsError(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateRun("dump", "localhost:9000")
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	if err := store.CompleteRun(run.ID, RunStatusFailed, 0, 0, "connection refused"); err != nil {
		t.Fatalf("failed to complete run: %v", err)
	}

	got, err := store.GetRun(run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.Status != RunStatusFailed {
		t.Errorf("expected status failed, got %q", got.Status)
	}
	if got.Error != "connection refused" {
		t.Errorf("expected error message preserved, got %q", got.Error)
	}
}

func TestSQLiteStore_CompleteUnknownRun(t *testing.T) {
	store := setupTestStore(t)
	if err := store.CompleteRun("no-such-id", RunStatusCompleted, 0, 0, ""); err == nil {
		t.Error("completing an unknown run should fail")
	}
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	store := setupTestStore(t)

	for i, source := range []string{"a.json", "b.json", "c.json"} {
		run, err := store.CreateRun("extract", source)
		if err != nil {
			t.Fatalf("failed to create run %d: %v", i, err)
		}
		if err := store.CompleteRun(run.ID, RunStatusCompleted, i, 1, ""); err != nil {
			t.Fatalf("failed to complete run %d: %v", i, err)
		}
		// started_at is second-resolution in some drivers; keep ordering
		// deterministic.
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := store.ListRuns(2)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Source != "c.json" {
		t.Errorf("expected newest run first, got %q", runs[0].Source)
	}
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore()
	if _, err := store.CreateRun("extract", "x"); err == nil {
		t.Error("CreateRun on unopened store should fail")
	}
	if err := store.InitSchema(); err == nil {
		t.Error("InitSchema on unopened store should fail")
	}
}
