// Package tui provides the Bubble Tea break timer interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/stretchy/internal/model"
	"github.com/verte-zerg/stretchy/internal/speech"
	"github.com/verte-zerg/stretchy/internal/timer"
)

// Recorder stores completed cycles.
type Recorder interface {
	InsertCycle(ctx context.Context, rec model.CycleRecord) (string, error)
}

type voicesMsg []model.VoiceOption

// Model implements the Bubble Tea timer UI.
type Model struct {
	ctx      context.Context
	config   model.Config
	engine   *timer.Engine
	source   *cmdSource
	notifier *speech.Notifier
	alert    *speech.DesktopAlert
	recorder Recorder
	log      *zap.Logger

	voiceUpdates chan []model.VoiceOption
	cancelVoices func()

	voices      []model.VoiceOption
	voiceIdx    int
	voicePicked bool

	completions int
	status      string

	width  int
	height int

	keys     keyMap
	help     help.Model
	progress progress.Model
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	clockStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	bannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	contentStyle = lipgloss.NewStyle().Padding(1, 4).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// NewModel constructs the timer UI. The notifier's voice subscription lives until the
// program exits.
func NewModel(ctx context.Context, cfg model.Config, notifier *speech.Notifier, recorder Recorder, alert *speech.DesktopAlert, log *zap.Logger) (*Model, error) {
	if log == nil {
		log = zap.NewNop()
	}
	source := newCmdSource(time.Second)
	engine, err := timer.NewEngine(cfg, source, log)
	if err != nil {
		return nil, err
	}
	m := &Model{
		ctx:          ctx,
		config:       cfg,
		engine:       engine,
		source:       source,
		notifier:     notifier,
		alert:        alert,
		recorder:     recorder,
		log:          log,
		voiceUpdates: make(chan []model.VoiceOption, 1),
		voiceIdx:     -1,
		keys:         defaultKeyMap(),
		help:         help.New(),
		progress:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	engine.OnComplete(m.handleComplete)
	m.cancelVoices = notifier.Subscribe(m.forwardVoices)
	m.setVoices(notifier.ListVoices())
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.waitForVoices()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		if !m.source.current(msg) {
			return m, nil
		}
		m.engine.Tick()
		return m, m.source.next()
	case voicesMsg:
		m.setVoices(msg)
		return m, m.waitForVoices()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.source.Stop()
		if m.cancelVoices != nil {
			m.cancelVoices()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		if m.engine.State().Running() {
			m.engine.Pause()
		} else {
			m.engine.Start()
		}
	case key.Matches(msg, m.keys.Pause):
		m.engine.Pause()
	case key.Matches(msg, m.keys.Reset):
		m.engine.Reset()
	case key.Matches(msg, m.keys.NextDuration):
		m.stepDuration(1)
	case key.Matches(msg, m.keys.PrevDuration):
		m.stepDuration(-1)
	case key.Matches(msg, m.keys.NextVoice):
		m.stepVoice(1)
	case key.Matches(msg, m.keys.PrevVoice):
		m.stepVoice(-1)
	case key.Matches(msg, m.keys.Mode):
		m.toggleMode()
	case key.Matches(msg, m.keys.Test):
		if _, err := m.announce(); err != nil {
			m.status = "speech unavailable"
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, m.source.take()
}

// View implements tea.Model.
func (m *Model) View() string {
	content := contentStyle.Render(m.renderBody())
	footer := footerStyle.Render(m.help.View(m.keys))
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	footerHeight := lipgloss.Height(footer)
	if m.height <= footerHeight+1 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-footerHeight, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer)
}

func (m *Model) renderBody() string {
	st := m.engine.State()
	clock := timer.FormatClock(st.Display())
	if st.Phase == timer.PhasePaused {
		clock = pausedStyle.Render(clock)
	} else {
		clock = clockStyle.Render(clock)
	}
	direction := "elapsed"
	if st.Mode == model.ModeDown {
		direction = "remaining"
	}
	lines := []string{
		titleStyle.Render("stretchy"),
		"",
		clock,
		m.progress.ViewAs(st.Progress()),
		infoStyle.Render(fmt.Sprintf("%s · %s · %s", st.Phase, timer.PresetLabel(st.Target), direction)),
		infoStyle.Render("voice: " + m.voiceLabel()),
	}
	if st.Completed() {
		lines = append(lines, "", bannerStyle.Render(m.banner()))
	}
	if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) banner() string {
	if m.config.Banner != "" {
		return m.config.Banner
	}
	return speech.DefaultBanner
}

func (m *Model) message() string {
	if m.config.Message != "" {
		return m.config.Message
	}
	return speech.DefaultMessage
}

func (m *Model) stepDuration(step int) {
	presets := m.engine.Presets()
	if len(presets) == 0 {
		return
	}
	next := timer.StepPreset(presets, m.engine.State().Target, step)
	if err := m.engine.SetDuration(next); err != nil {
		if errors.Is(err, timer.ErrNotIdle) {
			m.status = "reset the timer to change the duration"
			return
		}
		m.status = err.Error()
	}
}

func (m *Model) toggleMode() {
	mode := model.ModeDown
	if m.engine.State().Mode == model.ModeDown {
		mode = model.ModeUp
	}
	if err := m.engine.SetMode(mode); err != nil {
		m.status = "reset the timer to change the mode"
	}
}

func (m *Model) stepVoice(step int) {
	m.voicePicked = true
	n := len(m.voices) + 1 // slot 0 is the automatic pick
	pos := (m.voiceIdx + 1 + step) % n
	if pos < 0 {
		pos += n
	}
	m.voiceIdx = pos - 1
}

func (m *Model) selectedVoice() model.VoiceOption {
	if m.voiceIdx < 0 || m.voiceIdx >= len(m.voices) {
		return model.VoiceOption{}
	}
	return m.voices[m.voiceIdx]
}

func (m *Model) voiceLabel() string {
	v := m.selectedVoice()
	if v.IsZero() {
		auto, ok := m.notifier.AutoVoice()
		if !ok {
			return "platform default (" + m.notifier.Lang() + ")"
		}
		return fmt.Sprintf("auto (%s): %s", m.notifier.Lang(), auto.Name)
	}
	if v.Locale == "" {
		return v.Name
	}
	return fmt.Sprintf("%s (%s)", v.Name, v.Locale)
}

// setVoices replaces the list, keeping the current pick by name. Until the user picks a
// voice, the configured criteria decide.
func (m *Model) setVoices(voices []model.VoiceOption) {
	prev := m.selectedVoice()
	m.voices = voices
	m.voiceIdx = -1
	want := speech.Criteria{Name: m.config.Voice, Locale: m.config.VoiceLocale}
	if m.voicePicked {
		if prev.IsZero() {
			return
		}
		want = speech.Criteria{Name: prev.Name}
	}
	v, ok := speech.SelectVoice(voices, want)
	if !ok {
		return
	}
	for i := range voices {
		if voices[i] == v {
			m.voiceIdx = i
			return
		}
	}
}

func (m *Model) forwardVoices(voices []model.VoiceOption) {
	// Keep only the newest list when the UI has not consumed the previous one.
	select {
	case <-m.voiceUpdates:
	default:
	}
	select {
	case m.voiceUpdates <- voices:
	default:
	}
}

func (m *Model) waitForVoices() tea.Cmd {
	ch := m.voiceUpdates
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case voices := <-ch:
			return voicesMsg(voices)
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) announce() (model.VoiceOption, error) {
	voice := m.selectedVoice()
	return voice, m.notifier.Announce(m.ctx, m.message(), voice)
}

func (m *Model) handleComplete(c timer.Completion) {
	m.completions++
	voice, err := m.announce()
	announced := err == nil
	if err != nil {
		m.log.Warn("reminder not spoken", zap.Error(err))
		m.status = "speech unavailable"
	}
	if m.config.DesktopAlert {
		m.alert.Notify(m.message())
	}
	if m.recorder == nil {
		return
	}
	rec := model.CycleRecord{
		StartedAt:     c.StartedAt,
		CompletedAt:   c.CompletedAt,
		TargetSeconds: c.State.Target,
		Mode:          c.State.Mode,
		Voice:         voice.Name,
		Announced:     announced,
	}
	if _, err := m.recorder.InsertCycle(m.ctx, rec); err != nil {
		m.log.Error("failed to save cycle", zap.Error(err))
	}
}
