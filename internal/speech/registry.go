package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/verte-zerg/stretchy/internal/model"
)

// Voice list output formats understood by ExecRegistry.
const (
	FormatEspeak = "espeak"
	FormatSay    = "say"
)

// ExecRegistry lists voices by running a command and parsing its output.
type ExecRegistry struct {
	args  []string
	parse func(string) []model.VoiceOption
}

// NewExecRegistry parses command with shell quoting rules and picks the parser for format.
func NewExecRegistry(command, format string) (*ExecRegistry, error) {
	args, err := shellwords.NewParser().Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse voices command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("voices command empty")
	}
	var parse func(string) []model.VoiceOption
	switch format {
	case FormatEspeak:
		parse = ParseEspeakVoices
	case FormatSay:
		parse = ParseSayVoices
	default:
		return nil, fmt.Errorf("unknown voices format %q", format)
	}
	return &ExecRegistry{args: args, parse: parse}, nil
}

// Voices implements Registry.
func (r *ExecRegistry) Voices(ctx context.Context) ([]model.VoiceOption, error) {
	out, err := exec.CommandContext(ctx, r.args[0], r.args[1:]...).Output()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", r.args[0], err)
	}
	return r.parse(string(out)), nil
}

// ParseEspeakVoices parses `espeak-ng --voices` output.
func ParseEspeakVoices(out string) []model.VoiceOption {
	var voices []model.VoiceOption
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		voices = append(voices, model.VoiceOption{
			Name:   fields[3],
			Locale: fields[1],
		})
	}
	return voices
}

// ParseSayVoices parses `say -v '?'` output, where names may contain spaces.
func ParseSayVoices(out string) []model.VoiceOption {
	var voices []model.VoiceOption
	for _, line := range strings.Split(out, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cut := strings.LastIndexAny(line, " \t")
		if cut < 0 {
			continue
		}
		name := strings.TrimSpace(line[:cut])
		locale := strings.TrimSpace(line[cut+1:])
		if name == "" || locale == "" {
			continue
		}
		voices = append(voices, model.VoiceOption{Name: name, Locale: locale})
	}
	return voices
}

// StaticRegistry serves a fixed voice list.
type StaticRegistry []model.VoiceOption

// Voices implements Registry.
func (r StaticRegistry) Voices(context.Context) ([]model.VoiceOption, error) {
	return append([]model.VoiceOption(nil), r...), nil
}
