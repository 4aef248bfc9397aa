package recognize

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// CommandRecognizer runs an external classifier once per frame.
// The frame is written to the command's stdin; the first line of its stdout
// is either a label or an integer class index. A blank line means no hand
// was found.
type CommandRecognizer struct {
	path    string
	args    []string
	timeout time.Duration
}

// NewCommandRecognizer parses a command line such as "python3 classify.py --stdin".
func NewCommandRecognizer(command string, timeout time.Duration) (*CommandRecognizer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("recognizer command is empty")
	}
	path, err := exec.LookPath(fields[0])
	if err != nil {
		return nil, fmt.Errorf("recognizer command %q: %w", fields[0], err)
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &CommandRecognizer{path: path, args: fields[1:], timeout: timeout}, nil
}

func (r *CommandRecognizer) Name() string {
	return strings.Join(append([]string{r.path}, r.args...), " ")
}

// Recognize classifies frame, giving up after the configured timeout.
func (r *CommandRecognizer) Recognize(ctx context.Context, frame []byte) (string, error) {
	if len(frame) == 0 {
		return "", ErrEmptyPayload
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.path, r.args...)
	cmd.Stdin = bytes.NewReader(frame)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 100 * time.Millisecond

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("recognizer timed out after %v: %w", r.timeout, ctx.Err())
		}
		return "", fmt.Errorf("recognizer failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	line, _, _ := bufio.NewReader(&stdout).ReadLine()
	label := ParseOutput(string(line))
	log.Debugf("Recognized %q in %v", label, time.Since(start))
	return label, nil
}

// ParseOutput maps one line of classifier output to a label.
func ParseOutput(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	if class, err := strconv.Atoi(line); err == nil {
		return LabelFor(class)
	}
	return line
}
