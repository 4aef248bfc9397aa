package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/signtype/signtype/pkg/corpus"
)

// PathResolver locates the corpus of an installed binary.
type PathResolver struct {
	executableDir string
	configDir     string
}

// NewPathResolver creates a resolver rooted at the running executable.
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		configDir:     platformConfigDir(homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, pr.configDir)
	return pr, nil
}

func platformConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "signtype")
		}
		return filepath.Join(homeDir, ".config", "signtype")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "signtype")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "signtype")
	default:
		return filepath.Join(homeDir, ".config", "signtype")
	}
}

// CorpusCandidates lists where a corpus named path is looked for, in order:
// the path as given, next to the executable, its data/ dir, then the config dir.
func (pr *PathResolver) CorpusCandidates(path string) []string {
	if filepath.IsAbs(path) {
		return []string{path}
	}
	name := filepath.Base(path)
	candidates := []string{path}
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, path))
	}
	return append(candidates,
		filepath.Join(pr.executableDir, path),
		filepath.Join(pr.executableDir, "data", name),
		filepath.Join(filepath.Dir(pr.executableDir), "data", name),
		filepath.Join(pr.configDir, name),
	)
}

// GetCorpusPath returns the first candidate that validates as a corpus.
// When none does, the error of the first candidate is returned.
func (pr *PathResolver) GetCorpusPath(path string) (string, error) {
	candidates := pr.CorpusCandidates(path)
	var firstErr error
	for _, candidate := range candidates {
		err := corpus.Validate(candidate)
		if err == nil {
			log.Debugf("Found corpus: %s", candidate)
			return candidate, nil
		}
		log.Debugf("Corpus candidate not valid: %v", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", firstErr
}
