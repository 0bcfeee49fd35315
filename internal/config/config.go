package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DirName  = ".scenariochat"
	FileName = "config.json"

	DefaultTimeoutSeconds = 30
	DefaultWorkers        = 2
	DefaultQueueSize      = 8
	DefaultMaxSeconds     = 10
)

// Config is the application configuration file.
type Config struct {
	Scenarios   string            `json:"scenarios,omitempty"`
	LLM         LLMConfig         `json:"llm"`
	Speech      SpeechConfig      `json:"speech"`
	Recognition RecognitionConfig `json:"recognition"`
	Workers     int               `json:"workers,omitempty"`
	QueueSize   int               `json:"queueSize,omitempty"`
	Supersede   bool              `json:"supersede,omitempty"`
}

// LLMConfig selects the language model backend.
type LLMConfig struct {
	Provider       string `json:"provider,omitempty"`
	APIKey         string `json:"apiKey,omitempty"`
	Model          string `json:"model,omitempty"`
	BaseURL        string `json:"baseURL,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds,omitempty"`
}

// SpeechConfig selects the synthesis engine and player.
type SpeechConfig struct {
	Provider  string  `json:"provider,omitempty"`
	APIKey    string  `json:"apiKey,omitempty"`
	Region    string  `json:"region,omitempty"`
	Voice     string  `json:"voice,omitempty"`
	Engine    string  `json:"engine,omitempty"`
	ProjectID string  `json:"projectID,omitempty"`
	Model     string  `json:"model,omitempty"`
	Language  string  `json:"language,omitempty"`
	Host      string  `json:"host,omitempty"`
	Speed     float64 `json:"speed,omitempty"`
	Player    string  `json:"player,omitempty"`
	Disabled  bool    `json:"disabled,omitempty"`
}

// RecognitionConfig selects the recorder and speech recognizer.
type RecognitionConfig struct {
	Provider   string `json:"provider,omitempty"`
	APIKey     string `json:"apiKey,omitempty"`
	Model      string `json:"model,omitempty"`
	BaseURL    string `json:"baseURL,omitempty"`
	Language   string `json:"language,omitempty"`
	Recorder   string `json:"recorder,omitempty"`
	MaxSeconds int    `json:"maxSeconds,omitempty"`
	Disabled   bool   `json:"disabled,omitempty"`
}

var (
	llmProviders    = []string{"openai", "anthropic"}
	speechProviders = []string{"polly", "gcp", "openai", "elevenlabs", "voicevox", "aivisspeech"}
	recorders       = []string{"", "rec", "arecord"}
)

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Speech.Provider == "" {
		c.Speech.Provider = "polly"
	}
	if c.Speech.Provider == "polly" {
		if c.Speech.Region == "" {
			c.Speech.Region = "us-east-1"
		}
		if c.Speech.Engine == "" {
			c.Speech.Engine = "neural"
		}
	}
	if c.Recognition.Provider == "" {
		c.Recognition.Provider = "openai"
	}
	if c.Recognition.Model == "" {
		c.Recognition.Model = "whisper-1"
	}
	if c.Recognition.MaxSeconds == 0 {
		c.Recognition.MaxSeconds = DefaultMaxSeconds
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = DefaultQueueSize
	}
}

// Timeout bounds one language model call.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// Loader finds and reads configuration files.
type Loader struct {
	projectPath string
	globalPath  string
}

// NewLoader creates a loader for ./.scenariochat/config.json and
// ~/.scenariochat/config.json.
func NewLoader() *Loader {
	homeDir, _ := os.UserHomeDir()
	return &Loader{
		projectPath: filepath.Join(DirName, FileName),
		globalPath:  filepath.Join(homeDir, DirName, FileName),
	}
}

// Load reads configuration with priority:
// 1. explicit path (must exist)
// 2. project config under workDir
// 3. global config
// The built-in defaults are returned when no file exists. The second value is
// the path that was loaded, empty for defaults.
func (l *Loader) Load(explicit, workDir string) (*Config, string, error) {
	if explicit != "" {
		c, err := l.loadFromFile(explicit)
		if err != nil {
			return nil, "", err
		}
		return c, explicit, nil
	}

	for _, path := range []string{filepath.Join(workDir, l.projectPath), l.globalPath} {
		c, err := l.loadFromFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		log.Debug().Str("path", path).Msg("Loaded config")
		return c, path, nil
	}

	log.Debug().Msg("No config file found, using defaults")
	return Default(), "", nil
}

// ProjectPath returns the project config location under workDir.
func (l *Loader) ProjectPath(workDir string) string {
	return filepath.Join(workDir, l.projectPath)
}

// GlobalPath returns the per-user config location.
func (l *Loader) GlobalPath() string {
	return l.globalPath
}

func (l *Loader) loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	var c Config
	if err := json.Unmarshal([]byte(expanded), &c); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	checkFilePermissions(path)
	c.ApplyDefaults()
	return &c, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values
func expandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := match[2 : len(match)-1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Don't log variable names for security reasons
		log.Debug().Msg("Referenced environment variable not set in config")
		return ""
	})
}

func checkFilePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	mode := info.Mode().Perm()
	if mode&0077 != 0 {
		log.Warn().
			Str("permissions", fmt.Sprintf("%04o", mode)).
			Msg("Config file may contain secrets but has permissive permissions. Consider: chmod 600")
	}
}

// Validate returns human readable problems; empty means valid.
func (c *Config) Validate() []string {
	var problems []string

	if !contains(llmProviders, c.LLM.Provider) {
		problems = append(problems, fmt.Sprintf("llm: unknown provider '%s'", c.LLM.Provider))
	}
	if c.LLM.TimeoutSeconds < 0 {
		problems = append(problems, "llm: timeoutSeconds must not be negative")
	}

	if !c.Speech.Disabled {
		if !contains(speechProviders, c.Speech.Provider) {
			problems = append(problems, fmt.Sprintf("speech: unknown provider '%s'", c.Speech.Provider))
		}
		if c.Speech.Speed != 0 && (c.Speech.Speed < 0.25 || c.Speech.Speed > 4.0) {
			problems = append(problems, "speech: speed must be between 0.25 and 4.0")
		}
	}

	if !c.Recognition.Disabled {
		if c.Recognition.Provider != "openai" {
			problems = append(problems, fmt.Sprintf("recognition: unknown provider '%s'", c.Recognition.Provider))
		}
		if !contains(recorders, c.Recognition.Recorder) {
			problems = append(problems, fmt.Sprintf("recognition: recorder must be rec or arecord, got '%s'", c.Recognition.Recorder))
		}
		if c.Recognition.MaxSeconds < 1 || c.Recognition.MaxSeconds > 120 {
			problems = append(problems, "recognition: maxSeconds must be between 1 and 120")
		}
	}

	if c.Workers < 1 {
		problems = append(problems, "workers must be at least 1")
	}
	if c.QueueSize < 1 {
		problems = append(problems, "queueSize must be at least 1")
	}

	return problems
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// MaskSecrets returns a copy safe for display. It only shows that a key is
// present, not its contents.
func (c *Config) MaskSecrets() *Config {
	if c == nil {
		return nil
	}

	masked := *c
	masked.LLM.APIKey = maskKey(c.LLM.APIKey)
	masked.Speech.APIKey = maskKey(c.Speech.APIKey)
	masked.Recognition.APIKey = maskKey(c.Recognition.APIKey)
	return &masked
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("[set, %d chars]", len(key))
}

// GenerateExampleConfig generates an example configuration
func GenerateExampleConfig() string {
	example := Config{
		Scenarios: "scenarios.json",
		LLM: LLMConfig{
			Provider:       "openai",
			APIKey:         "${OPENAI_API_KEY}",
			Model:          "gpt-4o",
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Speech: SpeechConfig{
			Provider: "polly",
			Region:   "us-east-1",
			Voice:    "Joanna",
			Engine:   "neural",
		},
		Recognition: RecognitionConfig{
			Provider:   "openai",
			APIKey:     "${OPENAI_API_KEY}",
			Model:      "whisper-1",
			Language:   "en",
			MaxSeconds: DefaultMaxSeconds,
		},
		Workers:   DefaultWorkers,
		QueueSize: DefaultQueueSize,
	}

	data, _ := json.MarshalIndent(example, "", "  ")
	return string(data)
}

// WriteExample writes the example configuration to path with owner-only
// permissions. An existing file is left untouched.
func WriteExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateExampleConfig()+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
