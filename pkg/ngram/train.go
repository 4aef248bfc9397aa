/*
Package ngram builds the frequency-based next-word model.

Training is a single forward pass over the corpus that fills three count
tables (first words, second word given first, next word given the previous
two) and then normalizes them into probability tables. The resulting Model is
immutable; rebuilding means training a new one.

	model, err := ngram.TrainFile("markov_chain.txt")
	if err != nil {
		// errors.Is(err, corpus.ErrCorpusUnavailable): no model can be served
	}
	d, ok := model.Transition("i", "like")

There is no smoothing: a context never seen in training has no table entry.
*/
package ngram

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/signtype/signtype/pkg/corpus"
)

// Source yields utterances once. *corpus.Reader satisfies it.
type Source interface {
	Next() ([]string, bool)
	Err() error
}

// Count drains src into fresh count tables.
func Count(src Source) (*Counts, error) {
	counts := NewCounts()
	for tokens, ok := src.Next(); ok; tokens, ok = src.Next() {
		counts.Add(tokens)
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Train counts src and normalizes the result. The counts are dropped afterwards.
func Train(src Source) (*Model, error) {
	counts, err := Count(src)
	if err != nil {
		return nil, err
	}
	return Normalize(counts), nil
}

// TrainFile trains a model from the corpus file at path.
func TrainFile(path string) (*Model, error) {
	start := time.Now()

	r, err := corpus.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	model, err := Train(r)
	if err != nil {
		return nil, err
	}

	stats := model.Stats()
	log.Debugf("Trained model from %s in %v: utterances=[%d] skipped=[%d] bigrams=[%d] trigrams=[%d]",
		path, time.Since(start), stats.Utterances, r.Skipped(), stats.BigramContexts, stats.TrigramContexts)
	return model, nil
}
