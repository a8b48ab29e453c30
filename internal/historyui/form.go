package historyui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/stretchy/internal/model"
)

const (
	fieldSince = iota
	fieldLast
	fieldDays
	fieldCount
)

// settingsForm edits the report filter. Values are only applied after validation.
type settingsForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newSettingsForm() settingsForm {
	var f settingsForm
	for i, prompt := range [fieldCount]string{"Since (YYYY-MM-DD): ", "Last: ", "Days: "} {
		in := textinput.New()
		in.Prompt = prompt
		in.Cursor.SetMode(cursor.CursorBlink)
		f.inputs[i] = in
	}
	return f
}

// open loads cfg into the inputs and focuses the first field.
func (f *settingsForm) open(cfg model.HistoryConfig) tea.Cmd {
	since := ""
	if cfg.Since != nil {
		since = cfg.Since.Format("2006-01-02")
	}
	last := ""
	if cfg.Last > 0 {
		last = strconv.Itoa(cfg.Last)
	}
	f.inputs[fieldSince].SetValue(since)
	f.inputs[fieldLast].SetValue(last)
	f.inputs[fieldDays].SetValue(strconv.Itoa(cfg.Days))
	f.err = ""
	return f.focusField(0)
}

func (f *settingsForm) focusField(idx int) tea.Cmd {
	f.focus = (idx + fieldCount) % fieldCount
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.focus {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *settingsForm) setWidth(width int) {
	for i := range f.inputs {
		w := width - len(f.inputs[i].Prompt) - 2
		if w < 10 {
			w = 10
		}
		f.inputs[i].Width = w
	}
}

func (f *settingsForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// config parses the inputs into a filter.
func (f *settingsForm) config() (model.HistoryConfig, error) {
	var cfg model.HistoryConfig
	if v := strings.TrimSpace(f.inputs[fieldSince].Value()); v != "" {
		since, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		cfg.Since = &since
	}
	last, err := parseCount(f.inputs[fieldLast].Value())
	if err != nil {
		return cfg, fmt.Errorf("invalid last value (use 0 or positive integer)")
	}
	days, err := parseCount(f.inputs[fieldDays].Value())
	if err != nil {
		return cfg, fmt.Errorf("invalid days value (use 0 or positive integer)")
	}
	cfg.Last = last
	cfg.Days = days
	return cfg, nil
}

func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("not a count: %q", s)
	}
	return n, nil
}

func (f *settingsForm) view() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, in := range f.inputs {
		lines = append(lines, in.View())
	}
	if f.err != "" {
		lines = append(lines, errorStyle.Render(f.err))
	}
	return strings.Join(lines, "\n")
}
