// Package historyui provides the Bubble Tea break history interface.
package historyui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/stretchy/internal/history"
	"github.com/verte-zerg/stretchy/internal/model"
	"github.com/verte-zerg/stretchy/internal/timer"
)

type tab int

const (
	tabOverview tab = iota
	tabBreaks
	tabCount
)

func (t tab) String() string {
	if t == tabBreaks {
		return "Breaks"
	}
	return "Overview"
}

var (
	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B0B0B0")).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	activeTabStyle = tabStyle.
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	cardStyle      = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Model implements the Bubble Tea history UI.
type Model struct {
	lister history.CycleLister
	cfg    model.HistoryConfig
	now    func() time.Time

	report  history.Report
	loadErr string

	active   tab
	overview viewport.Model
	breaks   table.Model

	editing bool
	form    settingsForm

	width  int
	height int
}

// NewModel constructs a history UI model and loads the first report.
func NewModel(lister history.CycleLister, cfg model.HistoryConfig) *Model {
	m := &Model{
		lister:   lister,
		cfg:      cfg,
		now:      time.Now,
		overview: viewport.New(0, 0),
		breaks:   newBreaksTable(),
		form:     newSettingsForm(),
	}
	m.reload()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.editing {
			return m, m.updateForm(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		m.switchTab(m.active - 1)
		return m, tea.ClearScreen
	case "right", "l", "tab":
		m.switchTab(m.active + 1)
		return m, tea.ClearScreen
	case "r":
		m.reload()
		return m, nil
	case "/":
		m.editing = true
		return m, m.form.open(m.cfg)
	case "g", "home":
		m.breaks.GotoTop()
		m.overview.GotoTop()
		return m, nil
	case "G", "end":
		m.breaks.GotoBottom()
		m.overview.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	if m.active == tabBreaks {
		m.breaks, cmd = m.breaks.Update(msg)
	} else {
		m.overview, cmd = m.overview.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		return nil
	case tea.KeyTab:
		return m.form.focusField(m.form.focus + 1)
	case tea.KeyShiftTab:
		return m.form.focusField(m.form.focus - 1)
	case tea.KeyEnter:
		cfg, err := m.form.config()
		if err != nil {
			m.form.err = err.Error()
			return nil
		}
		m.editing = false
		m.cfg = cfg
		m.reload()
		return nil
	}
	return m.form.update(msg)
}

func (m *Model) switchTab(t tab) {
	m.active = (t + tabCount) % tabCount
	if m.active == tabBreaks {
		m.breaks.Focus()
	} else {
		m.breaks.Blur()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.header()
	footer := m.footer()
	bodyHeight := m.bodyHeight(header, footer)
	var body string
	switch {
	case m.editing:
		body = m.form.view()
	case m.active == tabBreaks && len(m.report.Cycles) == 0:
		body = "No breaks recorded yet."
	case m.active == tabBreaks:
		body = tableTextStyle.Render(m.breaks.View())
	default:
		body = m.overview.View()
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).MaxWidth(m.width).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) header() string {
	tabs := make([]string, 0, tabCount)
	for t := tabOverview; t < tabCount; t++ {
		style := tabStyle
		if t == m.active {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(t.String()))
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	filter := fmt.Sprintf("Settings: since=%s  last=%s  days=%d", since, last, m.cfg.Days)
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		mutedStyle.MaxWidth(m.width).Render(filter))
}

func (m *Model) footer() string {
	if m.editing {
		return mutedStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := mutedStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Reload: r  Settings: /  Quit: q")
	if m.loadErr != "" {
		return help + "\n" + errorStyle.Render(m.loadErr)
	}
	return help
}

func (m *Model) bodyHeight(header, footer string) int {
	h := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if h < 1 {
		return 1
	}
	return h
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	h := m.bodyHeight(m.header(), m.footer())
	m.overview.Width = m.width
	m.overview.Height = h
	m.breaks.SetWidth(m.width)
	m.breaks.SetHeight(max(1, h-1))
	m.form.setWidth(m.width)
	m.overview.SetContent(m.renderOverview())
}

func (m *Model) reload() {
	report, err := history.BuildReport(context.Background(), m.lister, m.cfg, m.now())
	if err != nil {
		m.loadErr = err.Error()
		m.overview.SetContent("Failed to load history.")
		return
	}
	m.loadErr = ""
	m.report = report
	m.breaks.SetRows(breakRows(report.Cycles, m.now()))
	m.overview.SetContent(m.renderOverview())
	m.resize()
}

func (m *Model) renderOverview() string {
	if len(m.report.Cycles) == 0 {
		return "No breaks recorded yet."
	}
	var buf bytes.Buffer
	if err := history.RenderDays(&buf, m.report.Days, true); err != nil {
		return fmt.Sprintf("Failed to render days: %v", err)
	}
	return strings.TrimRight(summaryCards(m.report.Cycles, m.width)+"\n\n"+buf.String(), "\n")
}

func summaryCards(cycles []model.CycleRecord, width int) string {
	total, spoken := 0, 0
	for _, c := range cycles {
		total += c.TargetSeconds
		if c.Announced {
			spoken++
		}
	}
	cards := []string{
		card("Breaks", strconv.Itoa(len(cycles))),
		card("Focus time", history.FormatHours(total)),
		card("Avg interval", timer.PresetLabel(total/len(cycles))),
		card("Spoken", fmt.Sprintf("%d/%d", spoken, len(cycles))),
	}
	if width > 0 && width < 60 {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func card(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func newBreaksTable() table.Model {
	t := table.New(table.WithColumns([]table.Column{
		{Title: "Completed", Width: 16},
		{Title: "When", Width: 14},
		{Title: "Interval", Width: 8},
		{Title: "Mode", Width: 4},
		{Title: "Voice", Width: 16},
		{Title: "Spoken", Width: 6},
	}), table.WithHeight(1))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.NoColor{})
	t.SetStyles(styles)
	return t
}

// breakRows lists cycles newest first.
func breakRows(cycles []model.CycleRecord, now time.Time) []table.Row {
	rows := make([]table.Row, 0, len(cycles))
	for i := len(cycles) - 1; i >= 0; i-- {
		c := cycles[i]
		voice := c.Voice
		if voice == "" {
			voice = "(default)"
		}
		spoken := "no"
		if c.Announced {
			spoken = "yes"
		}
		rows = append(rows, table.Row{
			c.CompletedAt.Local().Format("2006-01-02 15:04"),
			humanize.RelTime(c.CompletedAt, now, "ago", "from now"),
			timer.PresetLabel(c.TargetSeconds),
			string(c.Mode),
			voice,
			spoken,
		})
	}
	return rows
}
