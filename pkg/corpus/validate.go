package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Extensions lists the file extensions a corpus is expected to carry.
var Extensions = []string{".txt"}

// Validate checks that path names a readable, non-empty regular file.
// An unexpected extension is only logged: any line-oriented text file can serve.
func Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCorpusUnavailable, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrCorpusUnavailable, path)
	}
	if info.Size() < 1 {
		return fmt.Errorf("%w: %s is empty", ErrCorpusUnavailable, path)
	}

	if !HasCorpusExtension(path) {
		log.Warnf("Corpus %s has extension %q, expected one of %v", path, filepath.Ext(path), Extensions)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCorpusUnavailable, path, err)
	}
	defer file.Close()

	buffer := make([]byte, 1024)
	if _, err := file.Read(buffer); err != nil {
		return fmt.Errorf("%w: failed to read from %s: %w", ErrCorpusUnavailable, path, err)
	}

	log.Debugf("Corpus file %s validated (%d bytes)", path, info.Size())
	return nil
}

// HasCorpusExtension reports whether path ends in one of Extensions.
func HasCorpusExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, valid := range Extensions {
		if ext == valid {
			return true
		}
	}
	return false
}
