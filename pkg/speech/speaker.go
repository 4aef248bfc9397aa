// Package speech reads finished sentences aloud through an external TTS command.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoText is returned when there is nothing to say.
var ErrNoText = errors.New("No text provided")

// Speaker says text aloud, blocking until it is done.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// CommandSpeaker drives an espeak-compatible command:
// `<command> -s <rate> -a <amplitude> <text>`.
type CommandSpeaker struct {
	command string
	rate    int
	volume  float64
}

// NewCommandSpeaker returns a speaker for command at rate words per minute
// and volume in [0,1].
func NewCommandSpeaker(command string, rate int, volume float64) (*CommandSpeaker, error) {
	if _, err := exec.LookPath(command); err != nil {
		return nil, fmt.Errorf("speech command %q: %w", command, err)
	}
	return &CommandSpeaker{command: command, rate: rate, volume: volume}, nil
}

// Args returns the command line arguments used to say text.
// espeak amplitude runs 0-200 with 100 as normal, so volume 1.0 maps to 100.
func (s *CommandSpeaker) Args(text string) []string {
	amplitude := int(s.volume*100 + 0.5)
	return []string{"-s", strconv.Itoa(s.rate), "-a", strconv.Itoa(amplitude), "--", text}
}

func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrNoText
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.command, s.Args(text)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("speak: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
