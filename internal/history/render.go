package history

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/verte-zerg/stretchy/internal/model"
	"github.com/verte-zerg/stretchy/internal/timer"
)

const (
	sparkChars          = " .:-=+*#%@"
	terminalWidthBackup = 80
	recentLimit         = 10
)

var sparkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))

// Render prints the summary, the per-day table and the most recent cycles.
func Render(w io.Writer, report Report, now time.Time, useColor bool) error {
	if err := RenderSummary(w, report.Cycles); err != nil {
		return err
	}
	if len(report.Cycles) == 0 {
		return nil
	}
	if err := RenderDays(w, report.Days, useColor); err != nil {
		return err
	}
	return RenderRecent(w, report.Cycles, now)
}

// RenderSummary prints totals for cycles.
func RenderSummary(w io.Writer, cycles []model.CycleRecord) error {
	if len(cycles) == 0 {
		_, err := fmt.Fprintln(w, "No breaks recorded yet.")
		return err
	}
	total := 0
	announced := 0
	for _, c := range cycles {
		total += c.TargetSeconds
		if c.Announced {
			announced++
		}
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Breaks: %d", len(cycles)),
		fmt.Sprintf("Focus time: %s", FormatHours(total)),
		fmt.Sprintf("Avg interval: %s", timer.PresetLabel(total/len(cycles))),
		fmt.Sprintf("Spoken: %d/%d", announced, len(cycles)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderDays prints per-day counts with a sparkline.
func RenderDays(w io.Writer, days []model.DayAggregate, useColor bool) error {
	if len(days) == 0 {
		return nil
	}
	values := make([]float64, len(days))
	rows := make([][]string, 0, len(days))
	for i, d := range days {
		values[i] = float64(d.Cycles)
		rows = append(rows, []string{
			d.Day.Format("Mon 01-02"),
			fmt.Sprintf("%d", d.Cycles),
			FormatHours(d.Seconds),
		})
	}
	spark := Sparkline(values)
	if useColor {
		spark = sparkStyle.Render(spark)
	}
	if _, err := fmt.Fprintf(w, "Per Day  [%s]\n", spark); err != nil {
		return err
	}
	for _, line := range formatTable([]string{"Day", "Breaks", "Focus"}, rows, map[int]bool{1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderRecent prints the latest cycles, newest first.
func RenderRecent(w io.Writer, cycles []model.CycleRecord, now time.Time) error {
	if len(cycles) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Recent"); err != nil {
		return err
	}
	rows := make([][]string, 0, recentLimit)
	for i := len(cycles) - 1; i >= 0 && len(rows) < recentLimit; i-- {
		c := cycles[i]
		voice := c.Voice
		if voice == "" {
			voice = "(default)"
		}
		spoken := "no"
		if c.Announced {
			spoken = "yes"
		}
		rows = append(rows, []string{
			humanize.RelTime(c.CompletedAt, now, "ago", "from now"),
			timer.PresetLabel(c.TargetSeconds),
			string(c.Mode),
			voice,
			spoken,
		})
	}
	for _, line := range formatTable([]string{"When", "Interval", "Mode", "Voice", "Spoken"}, rows, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// FormatHours renders seconds as hours and minutes, e.g. 2h30m or 45m.
func FormatHours(seconds int) string {
	if seconds <= 0 {
		return "0m"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// FitDays caps days so the sparkline fits on one terminal line.
func FitDays(days int) int {
	width := terminalWidth()
	if limit := width - len("Per Day  []"); days > limit && limit > 0 {
		return limit
	}
	return days
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether w is a terminal and NO_COLOR is unset.
func ShouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return IsTerminal(w)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
