package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.Server.DefaultLimit != 10 || c.Server.MaxLimit != 64 || c.Server.FilterEnd {
		t.Errorf("unexpected server defaults: %+v", c.Server)
	}
	if c.Corpus.Path != "markov_chain.txt" {
		t.Errorf("expected markov_chain.txt, got %s", c.Corpus.Path)
	}
	if c.Speech.Rate != 150 || c.Speech.Volume != 0.9 || c.Speech.Command != "espeak" {
		t.Errorf("unexpected speech defaults: %+v", c.Speech)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, `
[server]
default_limit = 5
filter_end = true

[corpus]
path = "/data/corpus.txt"

[speech]
enabled = false
volume = 1
`)
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Server.DefaultLimit != 5 || !c.Server.FilterEnd {
		t.Errorf("server not loaded: %+v", c.Server)
	}
	if c.Server.MaxLimit != 64 {
		t.Errorf("missing key should keep default, got %d", c.Server.MaxLimit)
	}
	if c.Corpus.Path != "/data/corpus.txt" {
		t.Errorf("corpus path: got %s", c.Corpus.Path)
	}
	if c.Speech.Enabled || c.Speech.Volume != 1 {
		t.Errorf("speech not loaded: %+v", c.Speech)
	}
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	// wrong type for max_limit fails struct decoding
	path := writeFile(t, `
[server]
default_limit = 3
max_limit = "lots"

[recognizer]
command = "classify --stdin"
`)
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Server.DefaultLimit != 3 {
		t.Errorf("expected recovered default_limit 3, got %d", c.Server.DefaultLimit)
	}
	if c.Server.MaxLimit != 64 {
		t.Errorf("expected default max_limit, got %d", c.Server.MaxLimit)
	}
	if c.Recognizer.Command != "classify --stdin" {
		t.Errorf("expected recognizer command, got %q", c.Recognizer.Command)
	}
}

func TestLoadConfigGarbage(t *testing.T) {
	path := writeFile(t, "this is [[[ not toml")
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if *c != *DefaultConfig() {
		t.Errorf("expected defaults, got %+v", c)
	}
}

func TestSanitize(t *testing.T) {
	path := writeFile(t, `
[server]
default_limit = 100
max_limit = 20

[speech]
volume = 3.5
rate = -1
`)
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Server.DefaultLimit != 20 {
		t.Errorf("default_limit should be capped at max_limit, got %d", c.Server.DefaultLimit)
	}
	if c.Speech.Volume != 0.9 || c.Speech.Rate != 150 {
		t.Errorf("out of range speech values kept: %+v", c.Speech)
	}
}

func TestClampLimit(t *testing.T) {
	c := DefaultConfig()
	testCases := []struct {
		requested int
		expected  int
	}{
		{0, 10},
		{-3, 10},
		{5, 5},
		{64, 64},
		{1000, 64},
	}
	for _, tc := range testCases {
		if got := c.ClampLimit(tc.requested); got != tc.expected {
			t.Errorf("Input '%d': expected %d, got %d", tc.requested, tc.expected, got)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvCorpus, "/env/corpus.txt")
	t.Setenv(EnvSpeechCommand, "")
	t.Setenv(EnvRecognizerCommand, "python3 model.py")
	t.Setenv(EnvFilterEnd, "true")

	c := DefaultConfig()
	ApplyEnv(c)
	if c.Corpus.Path != "/env/corpus.txt" {
		t.Errorf("corpus: got %s", c.Corpus.Path)
	}
	if c.Speech.Enabled {
		t.Error("empty speech command should disable speech")
	}
	if c.Recognizer.Command != "python3 model.py" {
		t.Errorf("recognizer: got %q", c.Recognizer.Command)
	}
	if !c.Server.FilterEnd {
		t.Error("filter_end not applied")
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SIGNTYPE_CORPUS=/dotenv/corpus.txt\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvCorpus, "")
	os.Unsetenv(EnvCorpus)

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv(EnvCorpus); got != "/dotenv/corpus.txt" {
		t.Errorf("expected value from .env, got %q", got)
	}
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestUpdateSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	c := DefaultConfig()
	limit, filter := 7, true
	if err := c.Update(path, &limit, nil, &filter); err != nil {
		t.Fatalf("Update: %v", err)
	}
	reloaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if reloaded.Server.DefaultLimit != 7 || !reloaded.Server.FilterEnd {
		t.Errorf("update not persisted: %+v", reloaded.Server)
	}
}
