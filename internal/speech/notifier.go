package speech

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/stretchy/internal/model"
)

const announceTimeout = time.Minute

// Notifier caches the platform voice list and speaks reminders.
type Notifier struct {
	registry Registry
	speaker  Speaker
	lang     string
	rate     float64
	log      *zap.Logger

	mu     sync.Mutex
	voices []model.VoiceOption
	subs   map[int]func([]model.VoiceOption)
	nextID int

	inflight sync.WaitGroup
}

// NewNotifier builds a Notifier. A nil speaker makes Announce report ErrSpeechUnavailable.
func NewNotifier(registry Registry, speaker Speaker, cfg model.Config, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	lang := cfg.Lang
	if lang == "" {
		lang = DefaultLang
	}
	rate := cfg.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	return &Notifier{
		registry: registry,
		speaker:  speaker,
		lang:     lang,
		rate:     rate,
		log:      log,
		subs:     map[int]func([]model.VoiceOption){},
	}
}

// ListVoices returns the cached voices. The list is empty until the first Refresh.
func (n *Notifier) ListVoices() []model.VoiceOption {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.VoiceOption(nil), n.voices...)
}

// Subscribe registers fn to receive the new list whenever it changes.
func (n *Notifier) Subscribe(fn func([]model.VoiceOption)) (cancel func()) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	n.mu.Unlock()
	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

// Refresh queries the registry and notifies subscribers when the list changed.
func (n *Notifier) Refresh(ctx context.Context) error {
	if n.registry == nil {
		return nil
	}
	voices, err := n.registry.Voices(ctx)
	if err != nil {
		return err
	}
	n.mu.Lock()
	if slices.Equal(n.voices, voices) {
		n.mu.Unlock()
		return nil
	}
	n.voices = append([]model.VoiceOption(nil), voices...)
	subs := make([]func([]model.VoiceOption), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	n.log.Info("voices changed", zap.Int("count", len(voices)))
	for _, fn := range subs {
		fn(append([]model.VoiceOption(nil), voices...))
	}
	return nil
}

// Watch refreshes immediately and then every interval until ctx is done. A run of
// failures is logged once, when it starts.
func (n *Notifier) Watch(ctx context.Context, interval time.Duration) {
	failing := false
	n.watchRefresh(ctx, &failing)
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.watchRefresh(ctx, &failing)
		}
	}
}

func (n *Notifier) watchRefresh(ctx context.Context, failing *bool) {
	err := n.Refresh(ctx)
	switch {
	case err != nil && !*failing:
		n.log.Warn("failed to list voices", zap.Error(err))
	case err != nil:
		n.log.Debug("failed to list voices", zap.Error(err))
	case *failing:
		n.log.Info("voice listing recovered")
	}
	*failing = err != nil
}

// SelectVoice matches c against the cached list.
func (n *Notifier) SelectVoice(c Criteria) (model.VoiceOption, bool) {
	return SelectVoice(n.ListVoices(), c)
}

// Lang returns the reminder language tag.
func (n *Notifier) Lang() string {
	return n.lang
}

// AutoVoice returns the voice spoken when none is selected: the first listed voice for
// the reminder language. ok is false when the platform default is used instead.
func (n *Notifier) AutoVoice() (model.VoiceOption, bool) {
	return n.SelectVoice(Criteria{Locale: n.lang})
}

// Utterance builds the utterance Announce would speak. A zero voice means AutoVoice.
func (n *Notifier) Utterance(message string, voice model.VoiceOption) model.Utterance {
	u := model.Utterance{Text: message, Lang: n.lang, Rate: n.rate}
	if voice.IsZero() {
		voice, _ = n.AutoVoice()
	}
	if !voice.IsZero() {
		u.Voice = &voice
	}
	return u
}

// Announce speaks message in the background and returns immediately. Calls are not
// sequenced; overlapping announcements are left to the platform.
func (n *Notifier) Announce(ctx context.Context, message string, voice model.VoiceOption) error {
	if n.speaker == nil {
		return ErrSpeechUnavailable
	}
	u := n.Utterance(message, voice)
	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		ctx, cancel := context.WithTimeout(ctx, announceTimeout)
		defer cancel()
		if err := n.speaker.Speak(ctx, u); err != nil {
			n.log.Warn("announcement failed", zap.Error(err), zap.String("lang", u.Lang))
			return
		}
		n.log.Debug("announcement spoken", zap.String("text", u.Text))
	}()
	return nil
}

// Wait blocks until in-flight announcements finish.
func (n *Notifier) Wait() {
	n.inflight.Wait()
}
