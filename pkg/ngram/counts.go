package ngram

// End marks that a sentence may terminate after the pair it follows.
// Tokens are lower-cased, so no corpus word can collide with it.
const End = "END"

// Pair is an ordered two-token context.
type Pair [2]string

// Counts holds the raw tables accumulated in one pass over a corpus.
// It only lives for the duration of training.
type Counts struct {
	// First counts utterances by their first token.
	First map[string]int
	// Second counts the second token of an utterance, keyed by its first token.
	Second map[string]map[string]int
	// Transitions counts the token following each pair, with End recorded
	// for the pair that closes an utterance.
	Transitions map[Pair]map[string]int
	// Tokens counts every token occurrence at any position.
	Tokens map[string]int
	// Utterances is the number of non-empty utterances seen.
	Utterances int
}

// NewCounts returns empty count tables.
func NewCounts() *Counts {
	return &Counts{
		First:       make(map[string]int),
		Second:      make(map[string]map[string]int),
		Transitions: make(map[Pair]map[string]int),
		Tokens:      make(map[string]int),
	}
}

// Add records one utterance. Empty utterances are ignored.
func (c *Counts) Add(tokens []string) {
	n := len(tokens)
	if n == 0 {
		return
	}
	c.Utterances++

	for i, token := range tokens {
		c.Tokens[token]++

		if i == 0 {
			c.First[token]++
			continue
		}

		prev := tokens[i-1]
		if i == n-1 {
			increment(c.Transitions, Pair{prev, token}, End)
		}
		if i == 1 {
			increment(c.Second, prev, token)
		} else {
			increment(c.Transitions, Pair{tokens[i-2], prev}, token)
		}
	}
}

// increment bumps table[key][value], creating the inner map on first observation.
func increment[K comparable](table map[K]map[string]int, key K, value string) {
	inner, ok := table[key]
	if !ok {
		inner = make(map[string]int)
		table[key] = inner
	}
	inner[value]++
}
