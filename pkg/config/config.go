/*
Package config manages TOML config for SignType services.

	[server]
	default_limit = 10
	max_limit = 64
	filter_end = false

	[corpus]
	path = "markov_chain.txt"

	[speech]
	enabled = true
	command = "espeak"
	rate = 150
	volume = 0.9

	[recognizer]
	command = ""
	timeout_ms = 2000

Environment variables (optionally from a .env file) override the file:
SIGNTYPE_CORPUS, SIGNTYPE_SPEECH_COMMAND, SIGNTYPE_RECOGNIZER_COMMAND and
SIGNTYPE_FILTER_END. SIGNTYPE_DEBUG is read by the command itself.
*/
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/signtype/signtype/internal/utils"
)

// Environment overrides.
const (
	EnvCorpus            = "SIGNTYPE_CORPUS"
	EnvSpeechCommand     = "SIGNTYPE_SPEECH_COMMAND"
	EnvRecognizerCommand = "SIGNTYPE_RECOGNIZER_COMMAND"
	EnvFilterEnd         = "SIGNTYPE_FILTER_END"
	EnvDebug             = "SIGNTYPE_DEBUG"
)

// Config holds the entire config structure
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Corpus     CorpusConfig     `toml:"corpus"`
	Speech     SpeechConfig     `toml:"speech"`
	Recognizer RecognizerConfig `toml:"recognizer"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	DefaultLimit int  `toml:"default_limit"`
	MaxLimit     int  `toml:"max_limit"`
	FilterEnd    bool `toml:"filter_end"`
}

// CorpusConfig locates the training corpus.
type CorpusConfig struct {
	Path string `toml:"path"`
}

// SpeechConfig controls the text-to-speech command.
type SpeechConfig struct {
	Enabled bool    `toml:"enabled"`
	Command string  `toml:"command"`
	Rate    int     `toml:"rate"`
	Volume  float64 `toml:"volume"`
}

// RecognizerConfig controls the external frame classifier.
type RecognizerConfig struct {
	Command   string `toml:"command"`
	TimeoutMs int    `toml:"timeout_ms"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "signtype")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "signtype")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/signtype/config.toml
// 3. Builtin defaults
//
// Environment overrides are applied on top in every case.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	config, path := loadWithPriority(customConfigPath)
	ApplyEnv(config)
	return config, path, nil
}

func loadWithPriority(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), ""
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			DefaultLimit: 10,
			MaxLimit:     64,
			FilterEnd:    false,
		},
		Corpus: CorpusConfig{
			Path: "markov_chain.txt",
		},
		Speech: SpeechConfig{
			Enabled: true,
			Command: "espeak",
			Rate:    150,
			Volume:  0.9,
		},
		Recognizer: RecognizerConfig{
			Command:   "",
			TimeoutMs: 2000,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.sanitize()
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "corpus"); ok {
		extractCorpusConfig(section, &config.Corpus)
	}
	if section, ok := utils.ExtractSection(tempConfig, "speech"); ok {
		extractSpeechConfig(section, &config.Speech)
	}
	if section, ok := utils.ExtractSection(tempConfig, "recognizer"); ok {
		extractRecognizerConfig(section, &config.Recognizer)
	}
	config.sanitize()
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		server.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractBool(data, "filter_end"); ok {
		server.FilterEnd = val
	}
}

func extractCorpusConfig(data map[string]any, corpus *CorpusConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		corpus.Path = val
	}
}

func extractSpeechConfig(data map[string]any, speech *SpeechConfig) {
	if val, ok := utils.ExtractBool(data, "enabled"); ok {
		speech.Enabled = val
	}
	if val, ok := utils.ExtractString(data, "command"); ok {
		speech.Command = val
	}
	if val, ok := utils.ExtractInt64(data, "rate"); ok {
		speech.Rate = val
	}
	if val, ok := utils.ExtractFloat(data, "volume"); ok {
		speech.Volume = val
	}
}

func extractRecognizerConfig(data map[string]any, recognizer *RecognizerConfig) {
	if val, ok := utils.ExtractString(data, "command"); ok {
		recognizer.Command = val
	}
	if val, ok := utils.ExtractInt64(data, "timeout_ms"); ok {
		recognizer.TimeoutMs = val
	}
}

// sanitize puts out-of-range values back to their defaults.
func (c *Config) sanitize() {
	defaults := DefaultConfig()
	if c.Server.MaxLimit < 1 {
		c.Server.MaxLimit = defaults.Server.MaxLimit
	}
	if c.Server.DefaultLimit < 1 {
		c.Server.DefaultLimit = defaults.Server.DefaultLimit
	}
	if c.Server.DefaultLimit > c.Server.MaxLimit {
		c.Server.DefaultLimit = c.Server.MaxLimit
	}
	if c.Speech.Volume < 0 || c.Speech.Volume > 1 {
		log.Warnf("Speech volume %.2f out of range [0,1], using %.2f", c.Speech.Volume, defaults.Speech.Volume)
		c.Speech.Volume = defaults.Speech.Volume
	}
	if c.Speech.Rate < 1 {
		c.Speech.Rate = defaults.Speech.Rate
	}
	if c.Recognizer.TimeoutMs < 1 {
		c.Recognizer.TimeoutMs = defaults.Recognizer.TimeoutMs
	}
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment. Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if !utils.FileExists(path) {
		return nil
	}
	return godotenv.Load(path)
}

// ApplyEnv overrides config values from SIGNTYPE_* environment variables.
func ApplyEnv(c *Config) {
	if val := os.Getenv(EnvCorpus); val != "" {
		c.Corpus.Path = val
	}
	if val, ok := os.LookupEnv(EnvSpeechCommand); ok {
		c.Speech.Command = val
		c.Speech.Enabled = val != ""
	}
	if val := os.Getenv(EnvRecognizerCommand); val != "" {
		c.Recognizer.Command = val
	}
	if val := os.Getenv(EnvFilterEnd); val != "" {
		filter, err := strconv.ParseBool(val)
		if err != nil {
			log.Warnf("Ignoring %s=%q: %v", EnvFilterEnd, val, err)
		} else {
			c.Server.FilterEnd = filter
		}
	}
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the server values and saves to file
func (c *Config) Update(configPath string, defaultLimit, maxLimit *int, filterEnd *bool) error {
	server := &c.Server
	if defaultLimit != nil {
		server.DefaultLimit = *defaultLimit
	}
	if maxLimit != nil {
		server.MaxLimit = *maxLimit
	}
	if filterEnd != nil {
		server.FilterEnd = *filterEnd
	}
	c.sanitize()
	return SaveConfig(c, configPath)
}

// ClampLimit resolves a requested result count against the server limits.
func (c *Config) ClampLimit(requested int) int {
	if requested < 1 {
		return c.Server.DefaultLimit
	}
	if requested > c.Server.MaxLimit {
		return c.Server.MaxLimit
	}
	return requested
}
