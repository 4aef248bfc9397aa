package suggest

import (
	"strings"

	"github.com/signtype/signtype/pkg/corpus"
)

// Shape tells how many trailing tokens a Context carries.
type Shape int

const (
	// None carries no tokens and never yields suggestions.
	None Shape = iota
	// OneToken looks up the bigram table.
	OneToken
	// TwoTokens looks up the trigram table.
	TwoTokens
)

func (s Shape) String() string {
	switch s {
	case OneToken:
		return "one"
	case TwoTokens:
		return "two"
	default:
		return "none"
	}
}

// Context is the trailing window of the sentence used as a lookup key.
// The zero value is a None context.
type Context struct {
	shape Shape
	w1    string
	w2    string
}

// One returns a single-token context.
func One(w string) Context {
	return Context{shape: OneToken, w1: w}
}

// Two returns a two-token context, w1 preceding w2.
func Two(w1, w2 string) Context {
	return Context{shape: TwoTokens, w1: w1, w2: w2}
}

// FromTokens keeps at most the last two tokens.
func FromTokens(tokens []string) Context {
	switch n := len(tokens); n {
	case 0:
		return Context{}
	case 1:
		return One(tokens[0])
	default:
		return Two(tokens[n-2], tokens[n-1])
	}
}

// ContextFromSentence tokenizes a sentence buffer the same way the corpus is
// tokenized and returns its trailing context.
func ContextFromSentence(sentence string) Context {
	return FromTokens(corpus.Tokenize(sentence))
}

// Shape returns the context shape.
func (c Context) Shape() Shape {
	return c.shape
}

// Tokens returns the context tokens in sentence order.
func (c Context) Tokens() []string {
	switch c.shape {
	case OneToken:
		return []string{c.w1}
	case TwoTokens:
		return []string{c.w1, c.w2}
	default:
		return nil
	}
}

func (c Context) String() string {
	return "(" + strings.Join(c.Tokens(), " ") + ")"
}
