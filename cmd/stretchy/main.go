// Package main provides the CLI entrypoint for stretchy.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/stretchy/internal/config"
	"github.com/verte-zerg/stretchy/internal/history"
	"github.com/verte-zerg/stretchy/internal/historyui"
	"github.com/verte-zerg/stretchy/internal/logging"
	"github.com/verte-zerg/stretchy/internal/model"
	"github.com/verte-zerg/stretchy/internal/speech"
	"github.com/verte-zerg/stretchy/internal/store"
	"github.com/verte-zerg/stretchy/internal/timer"
	"github.com/verte-zerg/stretchy/internal/tui"
)

const (
	defaultMode          = string(model.ModeUp)
	defaultVoicesRefresh = 5 * time.Second
	defaultHistoryDays   = 14
)

var (
	timerDuration time.Duration
	timerMode     string

	speechEnabled bool
	speechMessage string
	speechLang    string
	speechRate    float64
	speechVoice   string
	speechLocale  string
	speechCommand string
	voicesCommand string
	voicesFormat  string
	desktopAlert  bool

	logDebug bool

	runRepeat bool

	historySince string
	historyLast  int
	historyDays  int
	historyPlain bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stretchy",
		Short:         "Stretch break reminder timer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTimerCmd,
	}

	speakCmd, listCmd, format := platformSpeechDefaults()
	flags := rootCmd.PersistentFlags()
	flags.DurationVar(&timerDuration, "duration", time.Duration(timer.DefaultDuration)*time.Second, "break interval (30m, 1h, 2h)")
	flags.StringVar(&timerMode, "mode", defaultMode, "display mode: up (elapsed) or down (remaining)")
	flags.BoolVar(&speechEnabled, "speech", true, "speak the reminder")
	flags.StringVar(&speechMessage, "message", speech.DefaultMessage, "reminder text")
	flags.StringVar(&speechLang, "lang", speech.DefaultLang, "reminder language tag")
	flags.Float64Var(&speechRate, "rate", speech.DefaultRate, "speaking rate (1.0 is normal)")
	flags.StringVar(&speechVoice, "voice", "", "voice name (default: first voice for --lang)")
	flags.StringVar(&speechLocale, "voice-locale", speech.DefaultLang, "locale used when --voice is not found")
	flags.StringVar(&speechCommand, "speak-command", speakCmd, "speech command template ({text} {voice} {lang} {rate} {wpm})")
	flags.StringVar(&voicesCommand, "voices-command", listCmd, "command listing voices (empty: only --voice)")
	flags.StringVar(&voicesFormat, "voices-format", format, "voices command output format: espeak or say")
	flags.BoolVar(&desktopAlert, "desktop-alert", false, "also raise a desktop notification")
	flags.BoolVar(&logDebug, "debug", false, "debug logging")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newVoicesCmd())
	rootCmd.AddCommand(newSayCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func platformSpeechDefaults() (speak, voices, format string) {
	if runtime.GOOS == "darwin" {
		return "say -v {voice} -r {wpm} {text}", "say -v '?'", speech.FormatSay
	}
	return "espeak-ng -v {voice} -s {wpm} {text}", "espeak-ng --voices", speech.FormatEspeak
}

type app struct {
	cfg      model.Config
	log      *zap.Logger
	notifier *speech.Notifier
	alert    *speech.DesktopAlert
}

// loadApp merges config file values under flags and builds the shared services.
func loadApp(cmd *cobra.Command, logToStderr bool) (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	durationSecs := int(timerDuration / time.Second)
	applyIntConfig(cmd, "duration", &durationSecs, fileCfg.Timer.Duration)
	applyStringConfig(cmd, "mode", &timerMode, fileCfg.Timer.Mode)
	applyBoolConfig(cmd, "speech", &speechEnabled, fileCfg.Speech.Enabled)
	applyStringConfig(cmd, "message", &speechMessage, fileCfg.Speech.Message)
	applyStringConfig(cmd, "lang", &speechLang, fileCfg.Speech.Lang)
	applyFloatConfig(cmd, "rate", &speechRate, fileCfg.Speech.Rate)
	applyStringConfig(cmd, "voice", &speechVoice, fileCfg.Speech.Voice)
	applyStringConfig(cmd, "voice-locale", &speechLocale, fileCfg.Speech.VoiceLocale)
	applyStringConfig(cmd, "speak-command", &speechCommand, fileCfg.Speech.Command)
	applyStringConfig(cmd, "voices-command", &voicesCommand, fileCfg.Speech.VoicesCommand)
	applyStringConfig(cmd, "voices-format", &voicesFormat, fileCfg.Speech.VoicesFormat)
	applyBoolConfig(cmd, "desktop-alert", &desktopAlert, fileCfg.Speech.DesktopAlert)
	applyBoolConfig(cmd, "debug", &logDebug, fileCfg.Log.Debug)

	presets := timer.DefaultPresets
	if len(fileCfg.Timer.Presets) > 0 {
		presets = fileCfg.Timer.Presets
	}
	if durationSecs > 0 && !containsInt(presets, durationSecs) {
		// A configured duration outside the presets becomes selectable too.
		presets = append(append([]int(nil), presets...), durationSecs)
	}

	banner := speech.DefaultBanner
	if fileCfg.Speech.Banner != nil {
		banner = *fileCfg.Speech.Banner
	}
	cfg := model.Config{
		Duration:      durationSecs,
		Presets:       presets,
		Mode:          model.Mode(timerMode),
		Message:       speechMessage,
		Lang:          speechLang,
		Rate:          speechRate,
		Voice:         speechVoice,
		VoiceLocale:   speechLocale,
		SpeakCommand:  speechCommand,
		VoicesCommand: voicesCommand,
		VoicesFormat:  voicesFormat,
		DesktopAlert:  desktopAlert,
		Banner:        banner,
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	logPath := config.DefaultLogPath()
	if fileCfg.Log.Path != nil && *fileCfg.Log.Path != "" {
		logPath = *fileCfg.Log.Path
	}
	log, err := logging.New(logPath, logDebug, logToStderr)
	if err != nil {
		return nil, err
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	var speaker speech.Speaker
	if speechEnabled {
		s, err := speech.NewExecSpeaker(cfg.SpeakCommand)
		switch {
		case errors.Is(err, speech.ErrSpeechUnavailable):
			log.Warn("speech disabled", zap.Error(err))
		case err != nil:
			return nil, fmt.Errorf("failed to configure speak command: %w", err)
		default:
			speaker = s
		}
	}

	return &app{
		cfg:      cfg,
		log:      log,
		notifier: speech.NewNotifier(registry, speaker, cfg, log),
		alert:    speech.NewDesktopAlert("stretchy", log),
	}, nil
}

// buildRegistry lists platform voices, or only the configured voice when the voices
// command is empty.
func buildRegistry(cfg model.Config) (speech.Registry, error) {
	if strings.TrimSpace(cfg.VoicesCommand) == "" {
		if cfg.Voice == "" {
			return speech.StaticRegistry{}, nil
		}
		return speech.StaticRegistry{{Name: cfg.Voice, Locale: cfg.VoiceLocale}}, nil
	}
	registry, err := speech.NewExecRegistry(cfg.VoicesCommand, cfg.VoicesFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to configure voices command: %w", err)
	}
	return registry, nil
}

func (a *app) close() {
	if err := a.log.Sync(); err != nil {
		// Best-effort flush.
		_ = err
	}
}

func runTimerCmd(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			a.log.Error("failed to close db", zap.Error(cerr))
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go a.notifier.Watch(ctx, defaultVoicesRefresh)

	m, err := tui.NewModel(ctx, a.cfg, a.notifier, st, a.alert, a.log)
	if err != nil {
		return fmt.Errorf("failed to create timer: %w", err)
	}
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	a.notifier.Wait()
	return nil
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the timer without a screen",
		Args:  cobra.NoArgs,
		RunE:  runHeadlessCmd,
	}
	cmd.Flags().BoolVar(&runRepeat, "repeat", false, "start the next cycle after each reminder")
	return cmd
}

func runHeadlessCmd(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			a.log.Error("failed to close db", zap.Error(cerr))
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go a.notifier.Watch(ctx, defaultVoicesRefresh)

	h := &headless{app: a, recorder: st, out: cmd.OutOrStdout(), repeat: runRepeat}
	return h.run(ctx)
}

func newVoicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List available voices",
		Args:  cobra.NoArgs,
		RunE:  runVoicesCmd,
	}
}

func runVoicesCmd(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.notifier.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("failed to list voices: %w", err)
	}
	voices := a.notifier.ListVoices()
	if len(voices) == 0 {
		logErrln("No voices reported; the platform default voice will be used.")
		return nil
	}
	selected, _ := a.notifier.SelectVoice(speech.Criteria{Name: a.cfg.Voice, Locale: a.cfg.VoiceLocale})
	for _, v := range voices {
		marker := " "
		if v == selected {
			marker = "*"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %-28s %s\n", marker, v.Name, v.Locale); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newSayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "say [text]",
		Short: "Speak the reminder once with the configured voice",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSayCmd,
	}
}

func runSayCmd(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if err := a.notifier.Refresh(ctx); err != nil {
		logErrf("failed to list voices: %v\n", err)
	}
	text := a.cfg.Message
	if len(args) == 1 {
		text = args[0]
	}
	voice, _ := a.notifier.SelectVoice(speech.Criteria{Name: a.cfg.Voice, Locale: a.cfg.VoiceLocale})
	if err := a.notifier.Announce(ctx, text, voice); err != nil {
		return fmt.Errorf("failed to speak: %w", err)
	}
	a.notifier.Wait()
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show completed breaks",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N breaks")
	cmd.Flags().IntVar(&historyDays, "days", defaultHistoryDays, "days in the per-day table")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a text report instead of the browser")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if historyLast < 0 || historyDays < 0 {
		return fmt.Errorf("--last and --days must be >= 0")
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	out := cmd.OutOrStdout()
	if !historyPlain && history.IsTerminal(out) {
		m := historyui.NewModel(st, model.HistoryConfig{Since: sinceTime, Last: historyLast, Days: historyDays})
		program := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run history TUI: %w", err)
		}
		return nil
	}

	cfg := model.HistoryConfig{Since: sinceTime, Last: historyLast, Days: history.FitDays(historyDays)}
	now := time.Now()
	report, err := history.BuildReport(cmd.Context(), st, cfg, now)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	return history.Render(out, report, now, history.ShouldUseColor(out))
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	speakCmd, listCmd, format := platformSpeechDefaults()
	return fmt.Sprintf(`# stretchy configuration
# Uncomment a value to enable it. CLI flags override config values.

[timer]
# duration = %d                # Break interval in seconds
# presets = [1800, 3600, 7200]  # Durations offered by the d/D keys
# mode = %q                    # up (elapsed) or down (remaining)

[speech]
# enabled = true
# message = %q
# banner = %q
# lang = %q
# rate = %.1f
# voice = ""                    # Exact voice name, see: stretchy voices
# voice-locale = %q
# command = %q
# voices-command = %q
# voices-format = %q
# desktop-alert = false

[log]
# debug = false
# path = %q
`,
		timer.DefaultDuration,
		defaultMode,
		speech.DefaultMessage,
		speech.DefaultBanner,
		speech.DefaultLang,
		speech.DefaultRate,
		speech.DefaultLang,
		speakCmd,
		listCmd,
		format,
		config.DefaultLogPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Duration <= 0 {
		return fmt.Errorf("--duration must be at least 1s")
	}
	for _, p := range cfg.Presets {
		if p <= 0 {
			return fmt.Errorf("presets must be positive, got %d", p)
		}
	}
	if !containsInt(cfg.Presets, cfg.Duration) {
		return fmt.Errorf("duration %s is not one of the presets %s", timer.PresetLabel(cfg.Duration), presetList(cfg.Presets))
	}
	if !cfg.Mode.Valid() {
		return fmt.Errorf("--mode must be %q or %q", model.ModeUp, model.ModeDown)
	}
	if cfg.Rate <= 0 {
		return fmt.Errorf("--rate must be > 0")
	}
	if strings.TrimSpace(cfg.Message) == "" {
		return fmt.Errorf("--message must not be empty")
	}
	return nil
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func presetList(presets []int) string {
	labels := make([]string, len(presets))
	for i, p := range presets {
		labels[i] = timer.PresetLabel(p)
	}
	return strings.Join(labels, ", ")
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
