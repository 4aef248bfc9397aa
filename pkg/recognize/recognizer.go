// Package recognize turns a camera frame into a sign label.
//
// The classifier itself lives outside the process: a CommandRecognizer hands
// the raw image to an external program and maps what it prints back to one of
// the labels in the class table.
package recognize

import (
	"context"
	"errors"
	"strings"
)

// Space is the label that separates words.
const Space = "space"

// Unknown is returned for class indices outside the table.
const Unknown = "?"

var (
	ErrEmptyPayload = errors.New("empty image payload")
	ErrBadPayload   = errors.New("invalid image payload")
)

// Recognizer classifies one encoded frame.
// An empty label with a nil error means nothing was recognized.
type Recognizer interface {
	Recognize(ctx context.Context, frame []byte) (string, error)
	Name() string
}

var labels = [...]string{
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"I love You", "yes", "No", "Hello", "Thanks", "Sorry", Space,
}

// LabelFor maps a classifier class index to its label.
func LabelFor(class int) string {
	if class < 0 || class >= len(labels) {
		return Unknown
	}
	return labels[class]
}

// Labels returns a copy of the class table.
func Labels() []string {
	return append([]string(nil), labels[:]...)
}

// Apply adds a recognized label to the sentence being signed.
// Space appends a blank, a single character extends the word being spelled
// and any longer label is appended as a word of its own.
func Apply(sentence, label string) string {
	switch {
	case label == "" || label == Unknown:
		return sentence
	case label == Space:
		return sentence + " "
	case len([]rune(label)) == 1:
		return sentence + label
	case sentence == "" || strings.HasSuffix(sentence, " "):
		return sentence + label
	default:
		return sentence + " " + label
	}
}

// Nop recognizes nothing. It stands in when no classifier is configured.
type Nop struct{}

func (Nop) Recognize(ctx context.Context, frame []byte) (string, error) {
	if len(frame) == 0 {
		return "", ErrEmptyPayload
	}
	return "", ctx.Err()
}

func (Nop) Name() string { return "nop" }
