// Package speech announces break reminders through the platform speech output.
package speech

import (
	"context"
	"errors"
	"strings"

	"github.com/verte-zerg/stretchy/internal/model"
)

// ErrSpeechUnavailable reports that no speech output can be used on this host.
var ErrSpeechUnavailable = errors.New("speech output unavailable")

const (
	// DefaultMessage is the reminder spoken when a cycle completes.
	DefaultMessage = "스트레칭 하셔요 ~"
	// DefaultBanner is shown when a cycle completes.
	DefaultBanner = "🤸 스트레칭 하자!"
	// DefaultLang is the language tag of the reminder.
	DefaultLang = "ko-KR"
	// DefaultRate is the normal speaking rate.
	DefaultRate = 1.0
)

// Registry enumerates the voices offered by the platform.
type Registry interface {
	Voices(ctx context.Context) ([]model.VoiceOption, error)
}

// Speaker plays a single utterance.
type Speaker interface {
	Speak(ctx context.Context, u model.Utterance) error
}

// Criteria selects a voice by exact name, then by locale.
type Criteria struct {
	Name   string
	Locale string
}

// SelectVoice picks a voice from voices. It returns the zero VoiceOption and false when
// nothing matches, meaning the platform default.
func SelectVoice(voices []model.VoiceOption, c Criteria) (model.VoiceOption, bool) {
	if c.Name != "" {
		for _, v := range voices {
			if v.Name == c.Name {
				return v, true
			}
		}
	}
	if c.Locale != "" {
		for _, v := range voices {
			if localeMatch(v.Locale, c.Locale) {
				return v, true
			}
		}
	}
	return model.VoiceOption{}, false
}

// localeMatch compares locale tags case-insensitively with _ and - equivalent. A bare
// language tag matches any region of that language.
func localeMatch(a, b string) bool {
	a = normalizeLocale(a)
	b = normalizeLocale(b)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	la, lb := primaryTag(a), primaryTag(b)
	return la == lb && (a == la || b == lb)
}

func normalizeLocale(tag string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
}

func primaryTag(tag string) string {
	if i := strings.IndexByte(tag, '-'); i >= 0 {
		return tag[:i]
	}
	return tag
}
