package suggest

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/signtype/signtype/pkg/ngram"
)

// Holder publishes the engine every request reads from.
// A reload trains a complete new engine before swapping the pointer, so
// readers see either the old model or the new one and never a partial build.
type Holder struct {
	current  atomic.Pointer[Engine]
	reloadMu sync.Mutex
	reloads  int
}

// NewHolder publishes engine.
func NewHolder(engine *Engine) *Holder {
	h := &Holder{}
	h.current.Store(engine)
	return h
}

// Load returns the engine currently in service.
func (h *Holder) Load() *Engine {
	return h.current.Load()
}

// Swap publishes engine and returns the previous one.
func (h *Holder) Swap(engine *Engine) *Engine {
	return h.current.Swap(engine)
}

// Reload retrains from the corpus at path and swaps the result in.
// On failure the engine in service is left untouched.
func (h *Holder) Reload(path string) error {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	start := time.Now()
	model, err := ngram.TrainFile(path)
	if err != nil {
		return fmt.Errorf("reload %s: %w", path, err)
	}
	h.Swap(NewEngine(model))
	h.reloads++

	log.Debugf("Model reloaded from %s in %v (reload #%d)", path, time.Since(start), h.reloads)
	return nil
}

// Reloads returns how many reloads succeeded.
func (h *Holder) Reloads() int {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	return h.reloads
}
