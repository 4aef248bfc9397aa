package suggest

import (
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/signtype/signtype/pkg/corpus"
	"github.com/signtype/signtype/pkg/ngram"
)

// Suggestion is one next-word candidate.
type Suggestion struct {
	Word        string
	Probability float64
}

// Engine answers queries against one trained model.
// Rankings are computed once in NewEngine; queries only read.
type Engine struct {
	model       *ngram.Model
	next        map[string][]Suggestion
	transitions map[ngram.Pair][]Suggestion
	vocab       *Vocabulary
}

// NewEngine ranks every context of model and indexes its vocabulary.
func NewEngine(model *ngram.Model) *Engine {
	e := &Engine{
		model:       model,
		next:        make(map[string][]Suggestion),
		transitions: make(map[ngram.Pair][]Suggestion),
		vocab:       NewVocabulary(model),
	}
	model.RangeBigrams(func(w string, d ngram.Distribution) bool {
		e.next[w] = rank(d)
		return true
	})
	model.RangeTrigrams(func(ctx ngram.Pair, d ngram.Distribution) bool {
		e.transitions[ctx] = rank(d)
		return true
	})
	return e
}

func rank(d ngram.Distribution) []Suggestion {
	ranked := d.Ranked()
	suggestions := make([]Suggestion, len(ranked))
	for i, c := range ranked {
		suggestions[i] = Suggestion{Word: c.Word, Probability: c.Probability}
	}
	return suggestions
}

// Suggest returns the candidates recorded for ctx, most probable first.
// A context that was never observed gives an empty result; so does None.
// The End sentinel is returned like any other candidate.
func (e *Engine) Suggest(ctx Context) []Suggestion {
	var ranked []Suggestion
	switch ctx.shape {
	case OneToken:
		ranked = e.next[ctx.w1]
	case TwoTokens:
		ranked = e.transitions[ngram.Pair{ctx.w1, ctx.w2}]
	}
	if len(ranked) == 0 {
		return []Suggestion{}
	}
	return slices.Clone(ranked)
}

// Set returns the candidate words for ctx.
func (e *Engine) Set(ctx Context) mapset.Set[string] {
	return mapset.NewSet(Words(e.Suggest(ctx))...)
}

// Complete returns vocabulary words starting with prefix, most frequent first.
func (e *Engine) Complete(prefix string, limit int) []Completion {
	return e.vocab.Complete(prefix, limit)
}

// CompleteInContext completes the last word of text. Completions that the
// words before it predict as the next word come first; the frequency order
// is kept within each group.
func (e *Engine) CompleteInContext(text string, limit int) []Completion {
	tokens := corpus.Tokenize(text)
	if len(tokens) == 0 {
		return []Completion{}
	}
	completions := e.vocab.Complete(text, 0)

	predicted := e.Set(FromTokens(tokens[:len(tokens)-1]))
	if predicted.Cardinality() > 0 {
		group := func(c Completion) int {
			if predicted.Contains(strings.ToLower(c.Word)) {
				return 0
			}
			return 1
		}
		slices.SortStableFunc(completions, func(a, b Completion) int {
			return group(a) - group(b)
		})
	}

	if limit > 0 && len(completions) > limit {
		completions = completions[:limit]
	}
	return completions
}

// Model returns the model the engine was built from.
func (e *Engine) Model() *ngram.Model {
	return e.model
}

// Stats returns table sizes of the loaded model.
func (e *Engine) Stats() map[string]int {
	s := e.model.Stats()
	return map[string]int{
		"utterances":         s.Utterances,
		"startWords":         s.StartWords,
		"bigramContexts":     s.BigramContexts,
		"trigramContexts":    s.TrigramContexts,
		"trigramEndContexts": s.TrigramEndContexts,
		"vocabulary":         s.VocabularySize,
	}
}

// Words returns the words of suggestions in order.
func Words(suggestions []Suggestion) []string {
	words := make([]string, len(suggestions))
	for i, s := range suggestions {
		words[i] = s.Word
	}
	return words
}

// WithoutEnd drops the End sentinel.
func WithoutEnd(suggestions []Suggestion) []Suggestion {
	return slices.DeleteFunc(suggestions, func(s Suggestion) bool {
		return s.Word == ngram.End
	})
}

// Limit truncates suggestions to at most limit entries; limit < 1 keeps all.
func Limit(suggestions []Suggestion, limit int) []Suggestion {
	if limit > 0 && len(suggestions) > limit {
		return suggestions[:limit]
	}
	return suggestions
}
