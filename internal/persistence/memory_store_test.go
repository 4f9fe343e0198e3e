package persistence

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryRepository_SequentialIDs(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	first := &fakeWizard{name: "signup"}
	second := &fakeWizard{name: "checkout"}

	if err := repo.SaveData(ctx, first, map[string]any{}); err != nil {
		t.Fatalf("SaveData failed: %v", err)
	}
	if err := repo.SaveData(ctx, second, map[string]any{}); err != nil {
		t.Fatalf("SaveData failed: %v", err)
	}

	if first.ID() != "1" || second.ID() != "2" {
		t.Fatalf("expected ids 1 and 2, got %q and %q", first.ID(), second.ID())
	}
}

func TestMemoryRepository_ConcurrentCreates(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	const n = 32
	ids := make([]string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := &fakeWizard{name: "signup"}
			if err := repo.SaveData(ctx, w, map[string]any{"n": i}); err != nil {
				t.Errorf("SaveData failed: %v", err)
				return
			}
			ids[i] = w.ID()
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		if id == "" {
			t.Fatalf("missing id after concurrent create")
		}
		if seen[id] {
			t.Fatalf("duplicate id %q handed out", id)
		}
		seen[id] = true
	}
}
