package database

import (
	"path/filepath"
	"testing"
)

func newTestRepo(t *testing.T) *SQLLedgerRepository {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewLedgerRepository(db)
}

func TestLedgerRepository_ContainsAfterFlush(t *testing.T) {
	repo := newTestRepo(t)

	id := "2025-01-12_Quiz_Physics_2025-01-10"

	found, err := repo.Contains(id)
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if found {
		t.Error("Fresh ledger should not contain any id")
	}

	if err := repo.Flush([]string{id}, "2025-01-10", ""); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	found, err = repo.Contains(id)
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if !found {
		t.Error("Flushed id should be present in the ledger")
	}
}

func TestLedgerRepository_FlushIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)

	ids := []string{"a_1", "b_1"}
	if err := repo.Flush(ids, "2025-01-10", ""); err != nil {
		t.Fatalf("First flush failed: %v", err)
	}
	if err := repo.Flush(ids, "2025-01-10", ""); err != nil {
		t.Fatalf("Repeated flush of the same ids should not fail: %v", err)
	}

	count, err := repo.GetCount()
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 ledger rows, got %d", count)
	}
}

func TestLedgerRepository_FlushEvictsExpired(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Flush([]string{"old_id"}, "2025-01-01", ""); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := repo.Flush([]string{"fresh_id"}, "2025-01-10", "2025-01-03"); err != nil {
		t.Fatalf("Flush with retention failed: %v", err)
	}

	found, err := repo.Contains("old_id")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if found {
		t.Error("Id fired before the retention horizon should be evicted")
	}

	found, err = repo.Contains("fresh_id")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if !found {
		t.Error("Id fired after the retention horizon should survive eviction")
	}
}

func TestLedgerRepository_FlushEmptyBatchStillPrunes(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Flush([]string{"old_id"}, "2025-01-01", ""); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := repo.Flush(nil, "2025-01-10", "2025-01-05"); err != nil {
		t.Fatalf("Empty flush failed: %v", err)
	}

	count, err := repo.GetCount()
	if err != nil {
		t.Fatalf("GetCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty ledger after prune, got %d rows", count)
	}
}

func TestLedgerRepository_GetRecent(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Flush([]string{"a_1", "b_1", "c_1"}, "2025-01-10", ""); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	recent, err := repo.GetRecent(2)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(recent))
	}
	for _, n := range recent {
		if n.FiredOn != "2025-01-10" {
			t.Errorf("Expected fired_on '2025-01-10', got %q", n.FiredOn)
		}
		if n.CreatedAt.IsZero() {
			t.Error("Expected created_at to be populated")
		}
	}
}
