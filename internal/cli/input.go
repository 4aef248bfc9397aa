// Package cli is an interactive loop for trying the suggestion engine by hand.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/signtype/signtype/internal/logger"
	"github.com/signtype/signtype/internal/utils"
	"github.com/signtype/signtype/pkg/suggest"
)

// InputHandler reads one sentence per line and prints what could come next.
// A line that does not end in a space is also treated as a word being spelled,
// and its completions are printed too.
//
// Lines starting with ':' are commands: :stats, :reload and :quit.
type InputHandler struct {
	holder       *suggest.Holder
	corpusPath   string
	suggestLimit int
	filterEnd    bool
	requestCount int

	in     io.Reader
	prompt io.Writer
	out    *log.Logger
}

// NewInputHandler creates a handler reading in and printing to out.
func NewInputHandler(holder *suggest.Holder, corpusPath string, limit int, filterEnd bool, in io.Reader, out io.Writer) *InputHandler {
	printer := logger.NewWithWriter(out, "")
	printer.SetReportTimestamp(false)
	return &InputHandler{
		holder:       holder,
		corpusPath:   corpusPath,
		suggestLimit: limit,
		filterEnd:    filterEnd,
		in:           in,
		prompt:       out,
		out:          printer,
	}
}

// Start runs the loop until EOF or :quit.
func (h *InputHandler) Start() error {
	h.out.Print("SignType CLI")
	h.out.Print("type a sentence and press Enter to see what comes next (:quit to exit):")

	reader := bufio.NewReader(h.in)
	for {
		fmt.Fprint(h.prompt, "> ")
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(strings.TrimSpace(line), ":") {
			if quit := h.handleCommand(strings.TrimSpace(line)); quit {
				return nil
			}
		} else if strings.TrimSpace(line) != "" {
			h.handleInput(line)
		}

		if err == io.EOF {
			return nil
		}
	}
}

func (h *InputHandler) handleCommand(cmd string) bool {
	switch cmd {
	case ":q", ":quit", ":exit":
		return true
	case ":stats":
		stats := h.holder.Load().Stats()
		for _, key := range []string{"utterances", "startWords", "bigramContexts", "trigramContexts", "trigramEndContexts", "vocabulary"} {
			h.out.Printf("%-20s %10s", key, utils.FormatWithCommas(stats[key]))
		}
	case ":reload":
		if err := h.holder.Reload(h.corpusPath); err != nil {
			h.out.Errorf("Reload failed: %v", err)
			return false
		}
		h.out.Printf("Reloaded %s", h.corpusPath)
	default:
		h.out.Errorf("Unknown command: %s", cmd)
	}
	return false
}

func (h *InputHandler) handleInput(line string) {
	h.requestCount++
	if !utils.IsValidInput(line) {
		h.out.Warnf("Ignoring input with control characters: %q", line)
		return
	}

	engine := h.holder.Load()
	start := time.Now()

	ctx := suggest.ContextFromSentence(line)
	suggestions := engine.Suggest(ctx)
	if h.filterEnd {
		suggestions = suggest.WithoutEnd(suggestions)
	}
	suggestions = suggest.Limit(suggestions, h.suggestLimit)

	var completions []suggest.Completion
	if !strings.HasSuffix(line, " ") {
		completions = engine.CompleteInContext(line, h.suggestLimit)
	}
	log.Debugf("Took [ %v ] for %s (request #%d)", time.Since(start), ctx, h.requestCount)

	if len(suggestions) == 0 {
		h.out.Printf("No next words after %s", ctx)
	} else {
		h.out.Printf("Next words after %s:", ctx)
		for i, s := range suggestions {
			h.out.Printf("%2d. %-24s (p: %.3f)", i+1, s.Word, s.Probability)
		}
	}

	if len(completions) > 0 {
		h.out.Printf("Completions:")
		for i, c := range completions {
			h.out.Printf("%2d. %-24s (freq: %8s)", i+1, c.Word, utils.FormatWithCommas(c.Frequency))
		}
	}
}
