package ngram

import "sort"

// Distribution maps candidate tokens to probabilities for one context.
// A Distribution is read-only once built.
type Distribution struct {
	probs map[string]float64
}

// Candidate is one token of a Distribution with its probability.
type Candidate struct {
	Word        string
	Probability float64
}

// Len returns the number of candidates.
func (d Distribution) Len() int {
	return len(d.probs)
}

// Prob returns the probability of word and whether it was observed.
func (d Distribution) Prob(word string) (float64, bool) {
	p, ok := d.probs[word]
	return p, ok
}

// Ranked returns candidates by probability descending, ties broken by word.
func (d Distribution) Ranked() []Candidate {
	ranked := make([]Candidate, 0, len(d.probs))
	for w, p := range d.probs {
		ranked = append(ranked, Candidate{Word: w, Probability: p})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Probability != ranked[j].Probability {
			return ranked[i].Probability > ranked[j].Probability
		}
		return ranked[i].Word < ranked[j].Word
	})
	return ranked
}

// Sum returns the total probability mass.
func (d Distribution) Sum() float64 {
	total := 0.0
	for _, p := range d.probs {
		total += p
	}
	return total
}

// Model is the union of the start, bigram and trigram probability tables.
// It is never modified after Normalize returns, so any number of goroutines
// may read it without locking.
type Model struct {
	start       Distribution
	next        map[string]Distribution
	transitions map[Pair]Distribution
	vocabulary  map[string]int
	utterances  int
}

// Stats summarizes table sizes.
type Stats struct {
	Utterances         int
	StartWords         int
	BigramContexts     int
	TrigramContexts    int
	VocabularySize     int
	TrigramEndContexts int
}

// Normalize turns raw counts into probability tables.
// Per-context tables divide by the context total; the start table divides by
// the utterance count.
func Normalize(c *Counts) *Model {
	m := &Model{
		start:       Distribution{probs: make(map[string]float64, len(c.First))},
		next:        make(map[string]Distribution, len(c.Second)),
		transitions: make(map[Pair]Distribution, len(c.Transitions)),
		vocabulary:  make(map[string]int, len(c.Tokens)),
		utterances:  c.Utterances,
	}

	if c.Utterances > 0 {
		total := float64(c.Utterances)
		for w, n := range c.First {
			m.start.probs[w] = float64(n) / total
		}
	}
	for ctx, followers := range c.Second {
		m.next[ctx] = normalizeCounts(followers)
	}
	for ctx, followers := range c.Transitions {
		m.transitions[ctx] = normalizeCounts(followers)
	}
	for w, n := range c.Tokens {
		m.vocabulary[w] = n
	}
	return m
}

func normalizeCounts(counts map[string]int) Distribution {
	total := 0
	for _, n := range counts {
		total += n
	}
	d := Distribution{probs: make(map[string]float64, len(counts))}
	for w, n := range counts {
		d.probs[w] = float64(n) / float64(total)
	}
	return d
}

// Start returns the distribution over utterance-initial tokens.
func (m *Model) Start() Distribution {
	return m.start
}

// Next returns the distribution of second words following first word w.
func (m *Model) Next(w string) (Distribution, bool) {
	d, ok := m.next[w]
	return d, ok
}

// Transition returns the distribution of tokens following the pair (w1, w2).
func (m *Model) Transition(w1, w2 string) (Distribution, bool) {
	d, ok := m.transitions[Pair{w1, w2}]
	return d, ok
}

// RangeBigrams calls fn for every bigram context until fn returns false.
func (m *Model) RangeBigrams(fn func(w string, d Distribution) bool) {
	for w, d := range m.next {
		if !fn(w, d) {
			return
		}
	}
}

// RangeTrigrams calls fn for every trigram context until fn returns false.
func (m *Model) RangeTrigrams(fn func(ctx Pair, d Distribution) bool) {
	for ctx, d := range m.transitions {
		if !fn(ctx, d) {
			return
		}
	}
}

// RangeVocabulary calls fn for every corpus token and its occurrence count.
func (m *Model) RangeVocabulary(fn func(w string, count int) bool) {
	for w, n := range m.vocabulary {
		if !fn(w, n) {
			return
		}
	}
}

// Utterances returns the number of utterances the model was trained on.
func (m *Model) Utterances() int {
	return m.utterances
}

// Stats reports table sizes.
func (m *Model) Stats() Stats {
	ends := 0
	for _, d := range m.transitions {
		if _, ok := d.probs[End]; ok {
			ends++
		}
	}
	return Stats{
		Utterances:         m.utterances,
		StartWords:         m.start.Len(),
		BigramContexts:     len(m.next),
		TrigramContexts:    len(m.transitions),
		VocabularySize:     len(m.vocabulary),
		TrigramEndContexts: ends,
	}
}
