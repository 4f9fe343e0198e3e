package persistence

import (
	"context"
	"testing"
	"time"
)

func TestDatabaseRepository_DeleteExpired(t *testing.T) {
	db := openTestDB(t)
	repo, err := NewDatabaseRepository(db)
	if err != nil {
		t.Fatalf("NewDatabaseRepository failed: %v", err)
	}
	ctx := context.Background()

	stale := &fakeWizard{name: "signup"}
	fresh := &fakeWizard{name: "signup"}
	if err := repo.SaveData(ctx, stale, map[string]any{"email": "old@b.test"}); err != nil {
		t.Fatalf("SaveData failed: %v", err)
	}
	if err := repo.SaveData(ctx, fresh, map[string]any{"email": "new@b.test"}); err != nil {
		t.Fatalf("SaveData failed: %v", err)
	}

	// Backdate the stale record past the cutoff.
	cutoff := time.Now().Add(-time.Hour)
	if _, err := db.Exec(
		`UPDATE wizards SET updated_at = ? WHERE id = ?`,
		cutoff.Add(-time.Minute).Unix(), stale.ID(),
	); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}

	deleted, err := repo.DeleteExpired(ctx, cutoff)
	if err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted record, got %d", deleted)
	}

	if _, err := repo.LoadData(ctx, stale); err == nil {
		t.Fatalf("stale record survived the sweep")
	}
	if _, err := repo.LoadData(ctx, fresh); err != nil {
		t.Fatalf("fresh record lost to the sweep: %v", err)
	}
}

func TestDatabaseRepository_DeleteExpiredRunsHook(t *testing.T) {
	db := openTestDB(t)

	type swept struct {
		name string
		id   string
		data map[string]any
	}
	var hooked []swept

	repo, err := NewDatabaseRepository(db, WithExpiryHook(
		func(ctx context.Context, wizardName, id string, data map[string]any) {
			hooked = append(hooked, swept{name: wizardName, id: id, data: data})
		},
	))
	if err != nil {
		t.Fatalf("NewDatabaseRepository failed: %v", err)
	}
	ctx := context.Background()

	w := &fakeWizard{name: "signup"}
	if err := repo.SaveData(ctx, w, map[string]any{"email": "old@b.test"}); err != nil {
		t.Fatalf("SaveData failed: %v", err)
	}
	if _, err := db.Exec(`UPDATE wizards SET updated_at = 0`); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}

	if _, err := repo.DeleteExpired(ctx, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}

	if len(hooked) != 1 {
		t.Fatalf("expected the hook to run once, ran %d times", len(hooked))
	}
	if hooked[0].name != "signup" || hooked[0].id != w.ID() {
		t.Fatalf("hook saw wrong record: %+v", hooked[0])
	}
	if hooked[0].data["email"] != "old@b.test" {
		t.Fatalf("hook saw wrong data: %+v", hooked[0].data)
	}
}

func TestDatabaseRepository_DeleteExpiredKeepsRecentRecords(t *testing.T) {
	db := openTestDB(t)
	repo, err := NewDatabaseRepository(db)
	if err != nil {
		t.Fatalf("NewDatabaseRepository failed: %v", err)
	}
	ctx := context.Background()

	w := &fakeWizard{name: "signup"}
	if err := repo.SaveData(ctx, w, map[string]any{"email": "a@b.test"}); err != nil {
		t.Fatalf("SaveData failed: %v", err)
	}

	deleted, err := repo.DeleteExpired(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("expected no deletions, got %d", deleted)
	}
}

func TestDatabaseRepository_SchemaIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	if _, err := NewDatabaseRepository(db); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if _, err := NewDatabaseRepository(db); err != nil {
		t.Fatalf("second init failed: %v", err)
	}
}
