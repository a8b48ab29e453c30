// Package model defines shared data structures.
package model

import "time"

// Mode selects the counting direction of the timer display.
type Mode string

const (
	// ModeUp shows elapsed time.
	ModeUp Mode = "up"
	// ModeDown shows remaining time.
	ModeDown Mode = "down"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeUp || m == ModeDown
}

// Config defines timer and announcement settings.
type Config struct {
	Duration      int
	Presets       []int
	Mode          Mode
	Message       string
	Lang          string
	Rate          float64
	Voice         string
	VoiceLocale   string
	SpeakCommand  string
	VoicesCommand string
	VoicesFormat  string
	DesktopAlert  bool
	Banner        string
}

// VoiceOption describes a voice offered by the platform registry.
type VoiceOption struct {
	Name   string
	Locale string
}

// IsZero reports whether v is the platform default voice.
func (v VoiceOption) IsZero() bool {
	return v.Name == "" && v.Locale == ""
}

// Utterance is a single unit of speech output.
type Utterance struct {
	Text  string
	Lang  string
	Rate  float64
	Voice *VoiceOption
}

// CycleRecord captures a completed timer cycle.
type CycleRecord struct {
	ID            string
	StartedAt     time.Time
	CompletedAt   time.Time
	TargetSeconds int
	Mode          Mode
	Voice         string
	Announced     bool
}

// HistoryConfig defines filters for the break log report.
type HistoryConfig struct {
	Since *time.Time
	Last  int
	Days  int
}

// DayAggregate counts completed cycles per calendar day.
type DayAggregate struct {
	Day     time.Time
	Cycles  int
	Seconds int
}
