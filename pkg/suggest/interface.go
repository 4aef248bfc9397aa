// Package suggest answers next-word and word-completion queries against a trained model.
package suggest

import mapset "github.com/deckarep/golang-set/v2"

// ISuggester defines what the server and CLI need from a suggestion engine.
type ISuggester interface {
	// Suggest returns next-word candidates for the trailing context, best first.
	Suggest(ctx Context) []Suggestion

	// Set returns the candidate words for ctx without ranking.
	Set(ctx Context) mapset.Set[string]

	// Complete returns corpus words that extend a partially spelled word.
	Complete(prefix string, limit int) []Completion

	// CompleteInContext completes the last word of text, preferring words
	// the preceding ones predict.
	CompleteInContext(text string, limit int) []Completion

	// Stats returns statistics about the loaded model
	Stats() map[string]int
}

var _ ISuggester = (*Engine)(nil)
