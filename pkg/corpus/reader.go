/*
Package corpus streams a line-oriented plain-text corpus as token sequences.

Each non-empty line is one utterance. Lines are stripped, NFC-normalized,
lower-cased and split on whitespace; blank lines are skipped without error.

	r, err := corpus.Open("markov_chain.txt")
	if err != nil {
		// errors.Is(err, corpus.ErrCorpusUnavailable)
	}
	defer r.Close()
	for tokens, ok := r.Next(); ok; tokens, ok = r.Next() {
		...
	}
	if err := r.Err(); err != nil {
		...
	}

The reader is single-pass: once Next reports false it stays exhausted.
*/
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrCorpusUnavailable is returned when the corpus source cannot be opened or read.
var ErrCorpusUnavailable = errors.New("corpus unavailable")

// Reader yields one utterance per non-empty source line.
type Reader struct {
	src     *bufio.Reader
	closer  io.Closer
	line    int
	skipped int
	done    bool
	err     error
}

// Open opens the corpus file at path.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorpusUnavailable, path, err)
	}
	r := Lines(file)
	r.closer = file
	return r, nil
}

// Lines builds a Reader over any stream of text lines.
func Lines(src io.Reader) *Reader {
	return &Reader{src: bufio.NewReader(src)}
}

// Next returns the next utterance, or false once the source is exhausted or broken.
func (r *Reader) Next() ([]string, bool) {
	for !r.done {
		line, err := r.src.ReadString('\n')
		if err != nil {
			r.done = true
			if !errors.Is(err, io.EOF) {
				r.err = fmt.Errorf("%w: line %d: %w", ErrCorpusUnavailable, r.line+1, err)
				return nil, false
			}
			if line == "" {
				return nil, false
			}
		}
		r.line++
		tokens := Tokenize(line)
		if len(tokens) == 0 {
			r.skipped++
			continue
		}
		return tokens, true
	}
	return nil, false
}

// Err reports a read failure hit by Next. A clean end of input is not an error.
func (r *Reader) Err() error {
	return r.err
}

// LineCount returns the number of lines read so far, including skipped ones.
func (r *Reader) LineCount() int {
	return r.line
}

// Skipped returns how many blank lines were dropped.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// Tokenize splits one line into lower-cased tokens.
// Corpus lines and query sentences must both go through here so they agree on token shape.
func Tokenize(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	return strings.Fields(strings.ToLower(norm.NFC.String(line)))
}
