package suggest

import (
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/signtype/signtype/pkg/corpus"
	"github.com/signtype/signtype/pkg/ngram"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Completion is a corpus word extending a partially spelled word.
type Completion struct {
	Word      string
	Frequency int
}

// Vocabulary indexes every corpus token by prefix for spelling-in-progress completion.
type Vocabulary struct {
	trie *patricia.Trie
	size int
}

// NewVocabulary builds the prefix index from the token frequencies of model.
func NewVocabulary(model *ngram.Model) *Vocabulary {
	v := &Vocabulary{trie: patricia.NewTrie()}
	model.RangeVocabulary(func(w string, count int) bool {
		v.trie.Insert(patricia.Prefix(w), count)
		v.size++
		return true
	})
	return v
}

// Len returns the number of indexed words.
func (v *Vocabulary) Len() int {
	return v.size
}

// Complete returns words starting with the last word of prefix, most frequent first.
// The word equal to the prefix itself is skipped. Capital letters typed in the
// prefix are carried over to the completions.
func (v *Vocabulary) Complete(prefix string, limit int) []Completion {
	tokens := corpus.Tokenize(prefix)
	if len(tokens) == 0 {
		return []Completion{}
	}
	lowerPrefix := tokens[len(tokens)-1]

	fields := strings.Fields(prefix)
	capitalPositions := capitals(fields[len(fields)-1])

	completions := SearchTrie(v.trie, lowerPrefix, capitalPositions)

	sort.Slice(completions, func(i, j int) bool {
		if completions[i].Frequency != completions[j].Frequency {
			return completions[i].Frequency > completions[j].Frequency
		}
		return completions[i].Word < completions[j].Word
	})

	if limit > 0 && len(completions) > limit {
		completions = completions[:limit]
	}
	return completions
}

// SearchTrie collects every entry below lowerPrefix, excluding lowerPrefix itself.
func SearchTrie(trie *patricia.Trie, lowerPrefix string, capitalPositions []bool) []Completion {
	if trie == nil {
		return []Completion{}
	}

	completions := []Completion{}

	err := trie.VisitSubtree(patricia.Prefix(lowerPrefix), func(p patricia.Prefix, item patricia.Item) error {
		word := string(p)
		if word == lowerPrefix {
			return nil
		}

		freq, ok := item.(int)
		if !ok {
			log.Errorf("Unknown item type: %T for word %s", item, p)
			return nil
		}

		completions = append(completions, Completion{
			Word:      ApplyCapitalization(word, capitalPositions),
			Frequency: freq,
		})
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
	}

	return completions
}

func capitals(word string) []bool {
	runes := []rune(word)
	positions := make([]bool, len(runes))
	found := false
	for i, r := range runes {
		if unicode.IsUpper(r) {
			positions[i] = true
			found = true
		}
	}
	if !found {
		return nil
	}
	return positions
}

// ApplyCapitalization upper-cases the runes of word whose position is marked.
func ApplyCapitalization(word string, capitalPositions []bool) string {
	if len(capitalPositions) == 0 {
		return word
	}

	wordRunes := []rune(word)
	for i := 0; i < len(wordRunes) && i < len(capitalPositions); i++ {
		if capitalPositions[i] {
			wordRunes[i] = unicode.ToUpper(wordRunes[i])
		}
	}
	return string(wordRunes)
}
