package timer

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/stretchy/internal/model"
)

// Completion describes a finished cycle.
type Completion struct {
	State       State
	StartedAt   time.Time
	CompletedAt time.Time
}

// Engine owns a timer State and applies events to it. All methods must be called from
// a single goroutine.
type Engine struct {
	state      State
	source     TickSource
	presets    []int
	onComplete func(Completion)
	log        *zap.Logger
	now        func() time.Time
	startedAt  time.Time
}

// NewEngine builds an idle engine for cfg.Duration. When cfg.Presets is non-empty the
// duration must be one of them.
func NewEngine(cfg model.Config, source TickSource, log *zap.Logger) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("tick source is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	mode := cfg.Mode
	if mode == "" {
		mode = model.ModeUp
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	e := &Engine{
		source:  source,
		presets: append([]int(nil), cfg.Presets...),
		log:     log,
		now:     time.Now,
	}
	if err := e.validDuration(cfg.Duration); err != nil {
		return nil, fmt.Errorf("duration %d: %w", cfg.Duration, err)
	}
	e.state = State{Mode: mode, Target: cfg.Duration, Phase: PhaseIdle}
	return e, nil
}

// OnComplete registers the completion callback, invoked once per cycle.
func (e *Engine) OnComplete(fn func(Completion)) {
	e.onComplete = fn
}

// State returns a snapshot of the current state.
func (e *Engine) State() State {
	return e.state
}

// Presets returns the offered durations in seconds.
func (e *Engine) Presets() []int {
	return append([]int(nil), e.presets...)
}

// Start begins or resumes the cycle. It is a no-op while running or completed.
func (e *Engine) Start() {
	fresh := e.state.Phase == PhaseIdle
	e.apply(Event{Kind: EventStart})
	if fresh && e.state.Running() {
		e.startedAt = e.now()
	}
}

// Pause stops advancing and keeps the elapsed time.
func (e *Engine) Pause() {
	e.apply(Event{Kind: EventPause})
}

// Reset stops the cycle and returns to the configured target.
func (e *Engine) Reset() {
	e.apply(Event{Kind: EventReset})
	e.startedAt = time.Time{}
}

// Tick advances one second. Ticks arriving while not running are ignored.
func (e *Engine) Tick() {
	e.apply(Event{Kind: EventTick})
}

// SetDuration changes the target. It fails with ErrNotIdle unless the timer is idle.
func (e *Engine) SetDuration(seconds int) error {
	if e.state.Phase != PhaseIdle {
		return ErrNotIdle
	}
	if err := e.validDuration(seconds); err != nil {
		return err
	}
	return e.apply(Event{Kind: EventSetDuration, Seconds: seconds})
}

// SetMode changes the counting direction. It fails with ErrNotIdle unless the timer is idle.
func (e *Engine) SetMode(mode model.Mode) error {
	return e.apply(Event{Kind: EventSetMode, Mode: mode})
}

func (e *Engine) apply(ev Event) error {
	next, effects, err := Apply(e.state, ev)
	if err != nil {
		e.log.Debug("timer event rejected", zap.Int("event", int(ev.Kind)), zap.Error(err))
		return err
	}
	prev := e.state
	e.state = next
	if effects.Has(EffectStopTicks) {
		e.source.Stop()
	}
	if effects.Has(EffectStartTicks) {
		e.source.Start()
	}
	if prev.Phase != next.Phase {
		e.log.Debug("timer phase changed",
			zap.Stringer("from", prev.Phase),
			zap.Stringer("to", next.Phase),
			zap.Int("elapsed", next.Elapsed),
			zap.Int("target", next.Target))
	}
	if effects.Has(EffectCompleted) {
		done := Completion{State: next, StartedAt: e.startedAt, CompletedAt: e.now()}
		e.log.Info("timer cycle completed", zap.Int("target", next.Target))
		if e.onComplete != nil {
			e.onComplete(done)
		}
	}
	return nil
}

func (e *Engine) validDuration(seconds int) error {
	if seconds <= 0 {
		return ErrInvalidDuration
	}
	if len(e.presets) == 0 {
		return nil
	}
	for _, p := range e.presets {
		if p == seconds {
			return nil
		}
	}
	return ErrInvalidDuration
}
