package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/stretchy/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "data", "stretchy.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListCycles(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		start := base.Add(time.Duration(i) * time.Hour)
		id, err := st.InsertCycle(ctx, model.CycleRecord{
			StartedAt:     start,
			CompletedAt:   start.Add(30 * time.Minute),
			TargetSeconds: 1800,
			Mode:          model.ModeDown,
			Voice:         "Yuna",
			Announced:     i != 1,
		})
		if err != nil {
			t.Fatalf("insert cycle: %v", err)
		}
		if id == "" {
			t.Fatalf("expected generated id")
		}
		ids = append(ids, id)
	}

	cycles, err := st.ListCycles(ctx, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list cycles: %v", err)
	}
	if len(cycles) != 3 {
		t.Fatalf("expected 3 cycles, got %d", len(cycles))
	}
	if cycles[0].ID != ids[0] || cycles[2].ID != ids[2] {
		t.Fatalf("unexpected order: %+v", cycles)
	}
	if cycles[1].Announced || !cycles[0].Announced {
		t.Fatalf("announced flag not round-tripped")
	}
	if !cycles[0].CompletedAt.Equal(base.Add(30*time.Minute)) || cycles[0].Mode != model.ModeDown {
		t.Fatalf("unexpected record: %+v", cycles[0])
	}

	since := base.Add(90 * time.Minute)
	cycles, err = st.ListCycles(ctx, model.HistoryConfig{Since: &since})
	if err != nil {
		t.Fatalf("list cycles since: %v", err)
	}
	if len(cycles) != 1 || cycles[0].ID != ids[2] {
		t.Fatalf("expected only the last cycle, got %+v", cycles)
	}

	cycles, err = st.ListCycles(ctx, model.HistoryConfig{Last: 2})
	if err != nil {
		t.Fatalf("list last cycles: %v", err)
	}
	if len(cycles) != 2 || cycles[0].ID != ids[1] {
		t.Fatalf("expected last 2 cycles, got %+v", cycles)
	}
}

func TestInsertCycleKeepsGivenID(t *testing.T) {
	st := openTestStore(t)
	now := time.Now()
	id, err := st.InsertCycle(context.Background(), model.CycleRecord{
		ID:            "fixed",
		StartedAt:     now,
		CompletedAt:   now,
		TargetSeconds: 5,
		Mode:          model.ModeUp,
	})
	if err != nil {
		t.Fatalf("insert cycle: %v", err)
	}
	if id != "fixed" {
		t.Fatalf("expected given id, got %s", id)
	}
}
