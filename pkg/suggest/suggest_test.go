package suggest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/signtype/signtype/pkg/corpus"
	"github.com/signtype/signtype/pkg/ngram"
)

const sampleCorpus = "i like cats\ni like dogs\ni love you\n"

func newEngine(t testing.TB, src string) *Engine {
	t.Helper()
	model, err := ngram.Train(corpus.Lines(strings.NewReader(src)))
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	return NewEngine(model)
}

func TestSuggestSample(t *testing.T) {
	engine := newEngine(t, sampleCorpus)

	testCases := []struct {
		ctx      Context
		expected []string
		desc     string
	}{
		{Two("i", "like"), []string{"cats", "dogs"}, "Trigram with two followers"},
		{Two("i", "love"), []string{"you"}, "Trigram with one follower"},
		{Two("love", "you"), []string{ngram.End}, "Pair closing an utterance"},
		{One("i"), []string{"like", "love"}, "Bigram from first word"},
		{Two("zzz", "qqq"), []string{}, "Unseen trigram context"},
		{One("zzz"), []string{}, "Unseen bigram context"},
		{One("like"), []string{}, "Word never utterance-initial"},
		{Context{}, []string{}, "Empty context"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got := engine.Set(tc.ctx)
			want := mapset.NewSet(tc.expected...)
			if !got.Equal(want) {
				t.Errorf("Suggest%s: expected %v, got %v", tc.ctx, want, got)
			}
		})
	}
}

func TestSuggestRanking(t *testing.T) {
	engine := newEngine(t, "i like cats\ni like cats\ni like dogs\ni love you\n")

	got := engine.Suggest(Two("i", "like"))
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %v", got)
	}
	if got[0].Word != "cats" || got[1].Word != "dogs" {
		t.Errorf("expected [cats dogs], got %v", Words(got))
	}
	if got[0].Probability <= got[1].Probability {
		t.Errorf("expected descending probabilities, got %v", got)
	}

	got = engine.Suggest(One("i"))
	if !reflect.DeepEqual(Words(got), []string{"like", "love"}) {
		t.Errorf("expected [like love], got %v", Words(got))
	}
}

func TestSuggestReturnsCopy(t *testing.T) {
	engine := newEngine(t, sampleCorpus)

	got := engine.Suggest(Two("i", "like"))
	got[0].Word = "mutated"

	again := engine.Suggest(Two("i", "like"))
	if again[0].Word == "mutated" {
		t.Error("caller mutation leaked into the engine")
	}
}

func TestContextFromSentence(t *testing.T) {
	testCases := []struct {
		sentence string
		shape    Shape
		tokens   []string
	}{
		{"", None, nil},
		{"   ", None, nil},
		{"I", OneToken, []string{"i"}},
		{"  i like ", TwoTokens, []string{"i", "like"}},
		{"yesterday I LOVE you", TwoTokens, []string{"love", "you"}},
		{"a b c d e", TwoTokens, []string{"d", "e"}},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%q", tc.sentence), func(t *testing.T) {
			ctx := ContextFromSentence(tc.sentence)
			if ctx.Shape() != tc.shape {
				t.Errorf("expected shape %v, got %v", tc.shape, ctx.Shape())
			}
			if !reflect.DeepEqual(ctx.Tokens(), tc.tokens) {
				t.Errorf("expected tokens %v, got %v", tc.tokens, ctx.Tokens())
			}
		})
	}
}

// only the last two tokens matter
func TestSuggestIgnoresOlderTokens(t *testing.T) {
	engine := newEngine(t, sampleCorpus)

	short := engine.Set(ContextFromSentence("i like"))
	long := engine.Set(ContextFromSentence("well you know i like"))
	if !short.Equal(long) {
		t.Errorf("expected %v, got %v", short, long)
	}
}

func TestWithoutEnd(t *testing.T) {
	engine := newEngine(t, "a b\na b c\n")

	got := engine.Suggest(Two("a", "b"))
	if !engine.Set(Two("a", "b")).Contains(ngram.End, "c") {
		t.Fatalf("expected END and c, got %v", Words(got))
	}
	filtered := WithoutEnd(got)
	if !reflect.DeepEqual(Words(filtered), []string{"c"}) {
		t.Errorf("expected [c], got %v", Words(filtered))
	}
}

func TestLimit(t *testing.T) {
	s := []Suggestion{{Word: "a"}, {Word: "b"}, {Word: "c"}}
	if got := Limit(s, 2); len(got) != 2 {
		t.Errorf("expected 2, got %d", len(got))
	}
	if got := Limit(s, 0); len(got) != 3 {
		t.Errorf("expected all 3 with limit 0, got %d", len(got))
	}
	if got := Limit(s, 10); len(got) != 3 {
		t.Errorf("expected 3, got %d", len(got))
	}
}

func TestComplete(t *testing.T) {
	engine := newEngine(t, "hello there\nhelp me\nhelp me please\nhell no\ni like cats\n")

	testCases := []struct {
		prefix   string
		limit    int
		expected []string
		desc     string
	}{
		{"hel", 10, []string{"help", "hell", "hello"}, "Frequency then alphabetical"},
		{"hel", 1, []string{"help"}, "Limited"},
		{"hell", 10, []string{"hello"}, "Exact word skipped"},
		{"Hel", 10, []string{"Help", "Hell", "Hello"}, "Capitals carried over"},
		{"i like c", 10, []string{"cats"}, "Last word of a sentence"},
		{"xyz", 10, []string{}, "No match"},
		{"", 10, []string{}, "Empty prefix"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got := engine.Complete(tc.prefix, tc.limit)
			words := make([]string, len(got))
			for i, c := range got {
				words[i] = c.Word
			}
			if !reflect.DeepEqual(words, tc.expected) {
				t.Errorf("Complete(%q): expected %v, got %v", tc.prefix, tc.expected, words)
			}
		})
	}
}

func TestCompleteInContext(t *testing.T) {
	engine := newEngine(t, "the cat sat\nthe cat sat\nthe car\ni like cars\ni like cats\ni like cats\ni like cats\n")

	// cats is the most frequent c-word, but only cat and car follow "the"
	got := engine.CompleteInContext("the ca", 10)
	words := make([]string, len(got))
	for i, c := range got {
		words[i] = c.Word
	}
	expected := []string{"cat", "car", "cats", "cars"}
	if !reflect.DeepEqual(words, expected) {
		t.Errorf("expected %v, got %v", expected, words)
	}

	// no context falls back to frequency order
	got = engine.CompleteInContext("ca", 2)
	if len(got) != 2 || got[0].Word != "cats" {
		t.Errorf("expected cats first, got %v", got)
	}
}

func TestStats(t *testing.T) {
	engine := newEngine(t, sampleCorpus)
	stats := engine.Stats()
	if stats["utterances"] != 3 || stats["bigramContexts"] != 1 || stats["trigramContexts"] != 5 {
		t.Errorf("unexpected stats: %v", stats)
	}
}

func writeCorpus(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "markov_chain.txt")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHolderReload(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpus(t, dir, sampleCorpus)

	holder := NewHolder(newEngine(t, sampleCorpus))
	before := holder.Load()

	writeCorpus(t, dir, "i want water\n")
	if err := holder.Reload(path); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	after := holder.Load()
	if after == before {
		t.Fatal("engine was not swapped")
	}
	if !after.Set(One("i")).Equal(mapset.NewSet("want")) {
		t.Errorf("new engine answers %v", after.Set(One("i")))
	}
	// the old engine is untouched
	if !before.Set(One("i")).Equal(mapset.NewSet("like", "love")) {
		t.Errorf("old engine changed: %v", before.Set(One("i")))
	}
	if holder.Reloads() != 1 {
		t.Errorf("expected 1 reload, got %d", holder.Reloads())
	}
}

func TestHolderReloadFailureKeepsEngine(t *testing.T) {
	holder := NewHolder(newEngine(t, sampleCorpus))
	before := holder.Load()

	err := holder.Reload(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, corpus.ErrCorpusUnavailable) {
		t.Fatalf("expected ErrCorpusUnavailable, got %v", err)
	}
	if holder.Load() != before {
		t.Error("failed reload replaced the engine")
	}
}

// many readers against one immutable model while reloads swap it; run with -race
func TestConcurrentReadsDuringReload(t *testing.T) {
	dir := t.TempDir()
	path := writeCorpus(t, dir, sampleCorpus)
	holder := NewHolder(newEngine(t, sampleCorpus))

	baselineGoroutines := runtime.NumGoroutine()

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				engine := holder.Load()
				got := engine.Set(Two("i", "like"))
				if !got.Equal(mapset.NewSet("cats", "dogs")) {
					t.Errorf("unexpected suggestions %v", got)
					return
				}
				_ = engine.Complete("c", 5)
			}
		}()
	}

	for i := 0; i < 5; i++ {
		if err := holder.Reload(path); err != nil {
			t.Errorf("Reload: %v", err)
		}
	}
	wg.Wait()

	runtime.GC()
	if delta := runtime.NumGoroutine() - baselineGoroutines; delta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", delta)
	}
}

func BenchmarkSuggest(b *testing.B) {
	engine := newEngine(b, sampleCorpus+"hello there friend\nthanks a lot\nsorry about that\n")
	contexts := []Context{Two("i", "like"), One("i"), Two("love", "you"), Two("zzz", "qqq"), One("hello")}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Suggest(contexts[i%len(contexts)])
	}
}
