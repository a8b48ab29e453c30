package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/stretchy/internal/model"
	"github.com/verte-zerg/stretchy/internal/speech"
	"github.com/verte-zerg/stretchy/internal/timer"
)

type cycleRecorder interface {
	InsertCycle(ctx context.Context, rec model.CycleRecord) (string, error)
}

// headless drives the engine from a wall-clock ticker and prints one line per event.
type headless struct {
	*app
	recorder cycleRecorder
	out      io.Writer
	repeat   bool
	interval time.Duration
}

func (h *headless) run(ctx context.Context) error {
	interval := h.interval
	if interval <= 0 {
		interval = time.Second
	}
	source := timer.NewIntervalSource(interval)
	engine, err := timer.NewEngine(h.cfg, source, h.log)
	if err != nil {
		return err
	}
	defer source.Stop()

	done := make(chan timer.Completion, 1)
	engine.OnComplete(func(c timer.Completion) {
		done <- c
	})

	engine.Start()
	h.printf("break in %s\n", timer.PresetLabel(h.cfg.Duration))
	for {
		select {
		case <-ctx.Done():
			h.notifier.Wait()
			return nil
		case <-source.C():
			engine.Tick()
		case c := <-done:
			h.complete(ctx, c)
			if !h.repeat {
				h.notifier.Wait()
				return nil
			}
			engine.Reset()
			engine.Start()
			h.printf("next break in %s\n", timer.PresetLabel(h.cfg.Duration))
		}
	}
}

func (h *headless) complete(ctx context.Context, c timer.Completion) {
	voice, _ := h.notifier.SelectVoice(speech.Criteria{Name: h.cfg.Voice, Locale: h.cfg.VoiceLocale})
	err := h.notifier.Announce(ctx, h.cfg.Message, voice)
	if err != nil {
		h.log.Warn("reminder not spoken", zap.Error(err))
	}
	h.printf("%s %s\n", c.CompletedAt.Format("15:04:05"), h.cfg.Banner)
	if h.cfg.DesktopAlert {
		h.alert.Notify(h.cfg.Message)
	}
	if h.recorder == nil {
		return
	}
	rec := model.CycleRecord{
		StartedAt:     c.StartedAt,
		CompletedAt:   c.CompletedAt,
		TargetSeconds: c.State.Target,
		Mode:          c.State.Mode,
		Voice:         voice.Name,
		Announced:     err == nil,
	}
	if _, err := h.recorder.InsertCycle(ctx, rec); err != nil {
		h.log.Error("failed to save cycle", zap.Error(err))
	}
}

func (h *headless) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(h.out, format, args...); err != nil {
		// Best-effort progress output.
		_ = err
	}
}
