package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/verte-zerg/stretchy/internal/model"
)

// baseWPM is the words-per-minute speed that corresponds to rate 1.0.
const baseWPM = 175

// ExecSpeaker speaks by running a command template. The placeholders {text}, {voice},
// {lang}, {rate} and {wpm} are substituted inside each argument.
type ExecSpeaker struct {
	args []string
}

// NewExecSpeaker parses template and checks that its program exists. A missing program
// yields an error wrapping ErrSpeechUnavailable.
func NewExecSpeaker(template string) (*ExecSpeaker, error) {
	args, err := shellwords.NewParser().Parse(template)
	if err != nil {
		return nil, fmt.Errorf("parse speak command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("speak command empty")
	}
	if _, err := exec.LookPath(args[0]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpeechUnavailable, err)
	}
	return &ExecSpeaker{args: args}, nil
}

// Speak implements Speaker. It blocks until the command exits.
func (s *ExecSpeaker) Speak(ctx context.Context, u model.Utterance) error {
	args := s.expand(u)
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", args[0], err, msg)
		}
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}

func (s *ExecSpeaker) expand(u model.Utterance) []string {
	voice := ""
	if u.Voice != nil {
		voice = u.Voice.Name
	}
	if voice == "" {
		voice = primaryTag(normalizeLocale(u.Lang))
	}
	rate := u.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	r := strings.NewReplacer(
		"{text}", u.Text,
		"{voice}", voice,
		"{lang}", u.Lang,
		"{rate}", strconv.FormatFloat(rate, 'f', -1, 64),
		"{wpm}", strconv.Itoa(int(rate*baseWPM)),
	)
	out := make([]string, 0, len(s.args))
	for i := 0; i < len(s.args); i++ {
		// Drop a flag and its voice argument when there is nothing to pass.
		if s.args[i] == "{voice}" && voice == "" {
			if len(out) > 0 && strings.HasPrefix(out[len(out)-1], "-") {
				out = out[:len(out)-1]
			}
			continue
		}
		out = append(out, r.Replace(s.args[i]))
	}
	return out
}
