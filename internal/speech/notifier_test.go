package speech

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/verte-zerg/stretchy/internal/model"
)

type recordingSpeaker struct {
	mu    sync.Mutex
	calls []model.Utterance
	err   error
}

func (r *recordingSpeaker) Speak(_ context.Context, u model.Utterance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, u)
	return r.err
}

func (r *recordingSpeaker) utterances() []model.Utterance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Utterance(nil), r.calls...)
}

type stagedRegistry struct {
	lists [][]model.VoiceOption
	calls int
}

func (s *stagedRegistry) Voices(context.Context) ([]model.VoiceOption, error) {
	idx := s.calls
	if idx >= len(s.lists) {
		idx = len(s.lists) - 1
	}
	s.calls++
	return s.lists[idx], nil
}

var testVoices = []model.VoiceOption{
	{Name: "Alex", Locale: "en_US"},
	{Name: "Yuna", Locale: "ko_KR"},
	{Name: "Sora", Locale: "ko_KR"},
}

func TestSelectVoiceExactName(t *testing.T) {
	v, ok := SelectVoice(testVoices, Criteria{Name: "Sora"})
	if !ok || v.Name != "Sora" {
		t.Fatalf("expected Sora, got %+v (ok=%v)", v, ok)
	}
}

func TestSelectVoiceFallsBackToDefault(t *testing.T) {
	v, ok := SelectVoice(testVoices, Criteria{Name: "Nobody"})
	if ok || !v.IsZero() {
		t.Fatalf("expected platform default, got %+v", v)
	}
	v, ok = SelectVoice(nil, Criteria{Name: "Yuna", Locale: "ko-KR"})
	if ok || !v.IsZero() {
		t.Fatalf("expected platform default for empty list, got %+v", v)
	}
}

func TestSelectVoiceByLocale(t *testing.T) {
	v, ok := SelectVoice(testVoices, Criteria{Name: "Nobody", Locale: "ko-KR"})
	if !ok || v.Name != "Yuna" {
		t.Fatalf("expected first Korean voice, got %+v", v)
	}
	espeak := []model.VoiceOption{{Name: "English", Locale: "en"}, {Name: "Korean", Locale: "ko"}}
	v, ok = SelectVoice(espeak, Criteria{Locale: "ko-KR"})
	if !ok || v.Name != "Korean" {
		t.Fatalf("expected language-only match, got %+v", v)
	}
	if localeMatch("ko-KR", "ko-KP") {
		t.Fatalf("different regions must not match")
	}
}

func TestAnnounceSpeaksReminder(t *testing.T) {
	spk := &recordingSpeaker{}
	n := NewNotifier(StaticRegistry(testVoices), spk, model.Config{}, zap.NewNop())
	if err := n.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := n.Announce(context.Background(), DefaultMessage, model.VoiceOption{}); err != nil {
		t.Fatalf("announce: %v", err)
	}
	n.Wait()
	calls := spk.utterances()
	if len(calls) != 1 {
		t.Fatalf("expected 1 utterance, got %d", len(calls))
	}
	u := calls[0]
	if u.Text != DefaultMessage || u.Lang != "ko-KR" || u.Rate != 1.0 {
		t.Fatalf("unexpected utterance: %+v", u)
	}
	if u.Voice == nil || u.Voice.Name != "Yuna" {
		t.Fatalf("expected Korean voice by locale, got %+v", u.Voice)
	}
}

func TestAnnounceUsesSelectedVoice(t *testing.T) {
	spk := &recordingSpeaker{}
	n := NewNotifier(nil, spk, model.Config{Lang: "ko-KR", Rate: 1.2}, nil)
	voice := model.VoiceOption{Name: "Sora", Locale: "ko_KR"}
	if err := n.Announce(context.Background(), "hi", voice); err != nil {
		t.Fatalf("announce: %v", err)
	}
	n.Wait()
	calls := spk.utterances()
	if len(calls) != 1 || calls[0].Voice == nil || calls[0].Voice.Name != "Sora" || calls[0].Rate != 1.2 {
		t.Fatalf("unexpected utterances: %+v", calls)
	}
}

func TestAnnounceWithoutSpeaker(t *testing.T) {
	n := NewNotifier(nil, nil, model.Config{}, nil)
	err := n.Announce(context.Background(), DefaultMessage, model.VoiceOption{})
	if !errors.Is(err, ErrSpeechUnavailable) {
		t.Fatalf("expected ErrSpeechUnavailable, got %v", err)
	}
}

func TestAnnounceSpeakerFailureIsSwallowed(t *testing.T) {
	spk := &recordingSpeaker{err: errors.New("boom")}
	n := NewNotifier(nil, spk, model.Config{}, nil)
	if err := n.Announce(context.Background(), DefaultMessage, model.VoiceOption{}); err != nil {
		t.Fatalf("announce returned playback error: %v", err)
	}
	n.Wait()
	if len(spk.utterances()) != 1 {
		t.Fatalf("expected speaker to be called")
	}
}

func TestRefreshNotifiesOnlyOnChange(t *testing.T) {
	reg := &stagedRegistry{lists: [][]model.VoiceOption{
		nil,
		testVoices[:1],
		testVoices[:1],
		testVoices,
	}}
	n := NewNotifier(reg, nil, model.Config{}, nil)
	var got [][]model.VoiceOption
	cancel := n.Subscribe(func(v []model.VoiceOption) {
		got = append(got, v)
	})
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if err := n.Refresh(ctx); err != nil {
			t.Fatalf("refresh: %v", err)
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if len(got[1]) != 3 || len(n.ListVoices()) != 3 {
		t.Fatalf("expected full list after last change")
	}

	cancel()
	reg.lists = append(reg.lists, testVoices[1:])
	if err := n.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("cancelled subscriber was notified")
	}
}

func TestListVoicesEmptyBeforeRefresh(t *testing.T) {
	n := NewNotifier(StaticRegistry(testVoices), nil, model.Config{}, nil)
	if len(n.ListVoices()) != 0 {
		t.Fatalf("expected empty list before refresh")
	}
	if _, ok := n.SelectVoice(Criteria{Name: "Yuna"}); ok {
		t.Fatalf("expected default before voices load")
	}
}

type flakyRegistry struct {
	errs  []error
	calls int
}

func (f *flakyRegistry) Voices(context.Context) ([]model.VoiceOption, error) {
	err := f.errs[f.calls%len(f.errs)]
	f.calls++
	if err != nil {
		return nil, err
	}
	return testVoices, nil
}

func TestWatchLogsFailureStreakOnce(t *testing.T) {
	missing := errors.New("espeak-ng: not found")
	reg := &flakyRegistry{errs: []error{missing, missing, missing, nil, missing}}
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewNotifier(reg, nil, model.Config{}, zap.New(core))

	ctx := context.Background()
	failing := false
	for i := 0; i < 3; i++ {
		n.watchRefresh(ctx, &failing)
	}
	if got := logs.FilterMessage("failed to list voices").Len(); got != 1 {
		t.Fatalf("expected one warning for the failure streak, got %d", got)
	}

	n.watchRefresh(ctx, &failing)
	if failing || logs.FilterMessage("voice listing recovered").Len() != 1 {
		t.Fatalf("expected recovery to be logged")
	}
	n.watchRefresh(ctx, &failing)
	if got := logs.FilterMessage("failed to list voices").Len(); got != 2 {
		t.Fatalf("expected a new streak to warn again, got %d", got)
	}
}
