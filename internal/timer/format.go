package timer

import "fmt"

// DefaultPresets are the offered durations: 30 minutes, 1 hour and 2 hours.
var DefaultPresets = []int{1800, 3600, 7200}

// DefaultDuration is the initially selected duration.
const DefaultDuration = 3600

// FormatClock renders seconds as mm:ss. Minutes are not wrapped at an hour.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// PresetLabel renders a duration as a short label such as 30m, 1h or 1h30m.
func PresetLabel(seconds int) string {
	switch {
	case seconds <= 0:
		return "0s"
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds%3600 == 0:
		return fmt.Sprintf("%dh", seconds/3600)
	case seconds > 3600 && seconds%60 == 0:
		return fmt.Sprintf("%dh%dm", seconds/3600, (seconds%3600)/60)
	case seconds%60 == 0:
		return fmt.Sprintf("%dm", seconds/60)
	default:
		return FormatClock(seconds)
	}
}

// StepPreset returns the preset step positions away from current, wrapping around.
// An unknown current value starts from the first preset.
func StepPreset(presets []int, current, step int) int {
	if len(presets) == 0 {
		return current
	}
	idx := -1
	for i, p := range presets {
		if p == current {
			idx = i
			break
		}
	}
	if idx == -1 {
		return presets[0]
	}
	n := len(presets)
	return presets[((idx+step)%n+n)%n]
}
