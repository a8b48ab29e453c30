package historyui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/stretchy/internal/model"
)

type fakeLister struct {
	cycles []model.CycleRecord
	err    error
	last   model.HistoryConfig
}

func (f *fakeLister) ListCycles(_ context.Context, cfg model.HistoryConfig) ([]model.CycleRecord, error) {
	f.last = cfg
	return f.cycles, f.err
}

func sampleCycles() []model.CycleRecord {
	now := time.Now()
	return []model.CycleRecord{
		{ID: "a", CompletedAt: now.Add(-2 * time.Hour), TargetSeconds: 3600, Mode: model.ModeUp, Announced: true},
		{ID: "b", CompletedAt: now.Add(-time.Hour), TargetSeconds: 1800, Mode: model.ModeDown, Voice: "Yuna"},
	}
}

func sized(m *Model) *Model {
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func TestOverviewShowsTotals(t *testing.T) {
	m := sized(NewModel(&fakeLister{cycles: sampleCycles()}, model.HistoryConfig{Days: 7}))
	view := m.View()
	for _, want := range []string{"Overview", "Breaks", "1h30m", "1/2"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestBreaksTabListsNewestFirst(t *testing.T) {
	m := sized(NewModel(&fakeLister{cycles: sampleCycles()}, model.HistoryConfig{Days: 7}))
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.active != tabBreaks {
		t.Fatalf("expected breaks tab")
	}
	rows := m.breaks.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][4] != "Yuna" || rows[1][4] != "(default)" {
		t.Fatalf("unexpected row order: %v", rows)
	}
	if !strings.Contains(m.View(), "Yuna") {
		t.Fatalf("expected voice in breaks view")
	}
}

func TestEmptyHistory(t *testing.T) {
	m := sized(NewModel(&fakeLister{}, model.HistoryConfig{}))
	if !strings.Contains(m.View(), "No breaks recorded yet.") {
		t.Fatalf("expected empty message")
	}
}

func TestLoadErrorShownInFooter(t *testing.T) {
	m := sized(NewModel(&fakeLister{err: errors.New("disk gone")}, model.HistoryConfig{}))
	if !strings.Contains(m.View(), "disk gone") {
		t.Fatalf("expected error in view")
	}
}

func TestApplyFilter(t *testing.T) {
	lister := &fakeLister{cycles: sampleCycles()}
	m := sized(NewModel(lister, model.HistoryConfig{Days: 7}))
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.editing {
		t.Fatalf("expected filter mode")
	}
	m.form.inputs[fieldSince].SetValue("2026-01-02")
	m.form.inputs[fieldLast].SetValue("5")
	m.form.inputs[fieldDays].SetValue("3")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.editing {
		t.Fatalf("expected filter applied, error: %s", m.form.err)
	}
	if lister.last.Last != 5 || lister.last.Since == nil || lister.last.Since.Day() != 2 {
		t.Fatalf("unexpected config: %+v", lister.last)
	}
	if len(m.report.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(m.report.Days))
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m.form.inputs[fieldLast].SetValue("-1")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.editing || m.form.err == "" {
		t.Fatalf("expected validation error")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.editing {
		t.Fatalf("expected esc to leave filter mode")
	}
}
