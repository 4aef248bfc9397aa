package speech

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	ErrQueueFull   = errors.New("speech queue is full")
	ErrQueueClosed = errors.New("speech queue is closed")
)

// Queue speaks texts one at a time in the background so callers never wait
// for the audio to finish.
type Queue struct {
	speaker Speaker
	timeout time.Duration
	texts   chan string
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewQueue starts the worker draining texts into speaker.
// Each utterance is cut off after timeout.
func NewQueue(speaker Speaker, size int, timeout time.Duration) *Queue {
	if size < 1 {
		size = 1
	}
	q := &Queue{
		speaker: speaker,
		timeout: timeout,
		texts:   make(chan string, size),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	for text := range q.texts {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		log.Infof("Speaking text: %s", text)
		if err := q.speaker.Speak(ctx, text); err != nil {
			log.Errorf("Error speaking text: %v", err)
		}
		cancel()
	}
}

// Say enqueues text without blocking.
func (q *Queue) Say(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrNoText
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.texts <- text:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting text and waits for queued texts to be spoken.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.texts)
	}
	q.mu.Unlock()
	<-q.done
}
