package speech

import (
	"context"
	"errors"
	"reflect"
	"runtime"
	"sync"
	"testing"
	"time"
)

type recordingSpeaker struct {
	mu     sync.Mutex
	said   []string
	block  chan struct{}
	failOn string
}

func (r *recordingSpeaker) Speak(ctx context.Context, text string) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.said = append(r.said, text)
	if text == r.failOn {
		return errors.New("device busy")
	}
	return nil
}

func (r *recordingSpeaker) Said() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.said...)
}

func TestQueueSpeaksInOrder(t *testing.T) {
	speaker := &recordingSpeaker{failOn: "two"}
	q := NewQueue(speaker, 8, time.Second)

	for _, text := range []string{"one", " two ", "three"} {
		if err := q.Say(text); err != nil {
			t.Fatalf("Say(%q): %v", text, err)
		}
	}
	q.Close()

	// a failing utterance does not stop the queue
	if got := speaker.Said(); !reflect.DeepEqual(got, []string{"one", "two", "three"}) {
		t.Errorf("expected [one two three], got %v", got)
	}
}

func TestQueueRejectsEmptyText(t *testing.T) {
	q := NewQueue(&recordingSpeaker{}, 1, time.Second)
	defer q.Close()

	for _, text := range []string{"", "   "} {
		if err := q.Say(text); !errors.Is(err, ErrNoText) {
			t.Errorf("Say(%q): expected ErrNoText, got %v", text, err)
		}
	}
	if ErrNoText.Error() != "No text provided" {
		t.Errorf("unexpected message %q", ErrNoText.Error())
	}
}

func TestQueueFull(t *testing.T) {
	speaker := &recordingSpeaker{block: make(chan struct{})}
	q := NewQueue(speaker, 1, time.Second)

	// the worker may already hold the first text, so fill until rejected
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = q.Say("hello")
	}
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}

	close(speaker.block)
	q.Close()
}

func TestQueueClosed(t *testing.T) {
	baseline := runtime.NumGoroutine()
	q := NewQueue(&recordingSpeaker{}, 1, time.Second)
	q.Close()
	q.Close()

	if err := q.Say("late"); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}
	if delta := runtime.NumGoroutine() - baseline; delta > 1 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", delta)
	}
}

func TestCommandSpeakerArgs(t *testing.T) {
	s := &CommandSpeaker{command: "espeak", rate: 150, volume: 0.9}
	expected := []string{"-s", "150", "-a", "90", "--", "i love you"}
	if got := s.Args("i love you"); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestCommandSpeakerEmptyText(t *testing.T) {
	s := &CommandSpeaker{command: "espeak", rate: 150, volume: 0.9}
	if err := s.Speak(context.Background(), "  "); !errors.Is(err, ErrNoText) {
		t.Errorf("expected ErrNoText, got %v", err)
	}
}
