package history

import (
	"context"
	"time"

	"github.com/verte-zerg/stretchy/internal/model"
)

// CycleLister is the store query used by reports.
type CycleLister interface {
	ListCycles(ctx context.Context, cfg model.HistoryConfig) ([]model.CycleRecord, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Cycles []model.CycleRecord
	Days   []model.DayAggregate
}

// BuildReport loads cycles and aggregates them per day ending at now.
func BuildReport(ctx context.Context, st CycleLister, cfg model.HistoryConfig, now time.Time) (Report, error) {
	cycles, err := st.ListCycles(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Cycles: cycles,
		Days:   DailyAggregates(cycles, cfg.Days, now),
	}, nil
}

// DailyAggregates counts cycles for each of the last days calendar days in now's
// location, oldest first. Days without cycles are included with zero counts.
func DailyAggregates(cycles []model.CycleRecord, days int, now time.Time) []model.DayAggregate {
	if days <= 0 {
		return nil
	}
	loc := now.Location()
	today := startOfDay(now)
	first := today.AddDate(0, 0, -(days - 1))
	out := make([]model.DayAggregate, days)
	for i := range out {
		out[i].Day = first.AddDate(0, 0, i)
	}
	for _, c := range cycles {
		day := startOfDay(c.CompletedAt.In(loc))
		if day.Before(first) || day.After(today) {
			continue
		}
		idx := daysBetween(first, day)
		if idx < 0 || idx >= days {
			continue
		}
		out[idx].Cycles++
		out[idx].Seconds += c.TargetSeconds
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days, which stays correct across DST changes.
func daysBetween(from, to time.Time) int {
	n := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}
