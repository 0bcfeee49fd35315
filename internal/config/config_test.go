package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_API_KEY", "sk-test-12345")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "expand ${VAR} pattern",
			input:    `{"apiKey": "${TEST_API_KEY}"}`,
			expected: `{"apiKey": "sk-test-12345"}`,
		},
		{
			name:     "missing env var returns empty",
			input:    `{"apiKey": "${NONEXISTENT_VAR_SCENARIOCHAT}"}`,
			expected: `{"apiKey": ""}`,
		},
		{
			name:     "no variables to expand",
			input:    `{"apiKey": "literal-value"}`,
			expected: `{"apiKey": "literal-value"}`,
		},
		{
			name:     "multiple variables",
			input:    `{"key1": "${TEST_API_KEY}", "key2": "${TEST_API_KEY}"}`,
			expected: `{"key1": "sk-test-12345", "key2": "sk-test-12345"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func newTestLoader(t *testing.T) (*Loader, string, string) {
	t.Helper()
	work := t.TempDir()
	home := t.TempDir()
	return &Loader{
		projectPath: filepath.Join(DirName, FileName),
		globalPath:  filepath.Join(home, DirName, FileName),
	}, work, home
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoader_Load(t *testing.T) {
	t.Run("defaults when nothing exists", func(t *testing.T) {
		loader, work, _ := newTestLoader(t)

		c, path, err := loader.Load("", work)
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, Default(), c)
	})

	t.Run("project config wins over global", func(t *testing.T) {
		loader, work, home := newTestLoader(t)
		t.Setenv("TEST_OPENAI_KEY", "sk-project")
		writeConfig(t, filepath.Join(work, DirName, FileName), `{"llm": {"apiKey": "${TEST_OPENAI_KEY}"}, "workers": 4}`)
		writeConfig(t, filepath.Join(home, DirName, FileName), `{"workers": 9}`)

		c, path, err := loader.Load("", work)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(work, DirName, FileName), path)
		assert.Equal(t, "sk-project", c.LLM.APIKey)
		assert.Equal(t, 4, c.Workers)
		assert.Equal(t, DefaultQueueSize, c.QueueSize)
		assert.Equal(t, 30*time.Second, c.Timeout())
	})

	t.Run("global config", func(t *testing.T) {
		loader, work, home := newTestLoader(t)
		writeConfig(t, filepath.Join(home, DirName, FileName), `{"speech": {"provider": "voicevox", "voice": "3"}}`)

		c, _, err := loader.Load("", work)
		require.NoError(t, err)
		assert.Equal(t, "voicevox", c.Speech.Provider)
		assert.Empty(t, c.Speech.Region)
	})

	t.Run("explicit path must exist", func(t *testing.T) {
		loader, work, _ := newTestLoader(t)

		_, _, err := loader.Load(filepath.Join(work, "missing.json"), work)
		assert.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("malformed project config is an error", func(t *testing.T) {
		loader, work, _ := newTestLoader(t)
		writeConfig(t, filepath.Join(work, DirName, FileName), `{not json`)

		_, _, err := loader.Load("", work)
		assert.ErrorContains(t, err, "failed to parse config file")
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		problems []string
	}{
		{"defaults are valid", func(c *Config) {}, nil},
		{"unknown llm", func(c *Config) { c.LLM.Provider = "cohere" }, []string{"llm: unknown provider 'cohere'"}},
		{"unknown speech", func(c *Config) { c.Speech.Provider = "say" }, []string{"speech: unknown provider 'say'"}},
		{"disabled speech skips checks", func(c *Config) { c.Speech.Provider = "say"; c.Speech.Disabled = true }, nil},
		{"speed range", func(c *Config) { c.Speech.Speed = 5 }, []string{"speech: speed must be between 0.25 and 4.0"}},
		{"recorder", func(c *Config) { c.Recognition.Recorder = "ffmpeg" }, []string{"recognition: recorder must be rec or arecord, got 'ffmpeg'"}},
		{"max seconds", func(c *Config) { c.Recognition.MaxSeconds = 600 }, []string{"recognition: maxSeconds must be between 1 and 120"}},
		{"pool sizes", func(c *Config) { c.Workers = -1; c.QueueSize = -1 }, []string{"workers must be at least 1", "queueSize must be at least 1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Equal(t, tt.problems, c.Validate())
		})
	}
}

func TestConfig_MaskSecrets(t *testing.T) {
	c := Default()
	c.LLM.APIKey = "sk-1234567890"
	c.Recognition.APIKey = "sk-abc"

	masked := c.MaskSecrets()
	assert.Equal(t, "[set, 13 chars]", masked.LLM.APIKey)
	assert.Equal(t, "[set, 6 chars]", masked.Recognition.APIKey)
	assert.Empty(t, masked.Speech.APIKey)
	assert.Equal(t, "sk-1234567890", c.LLM.APIKey)

	var nilConfig *Config
	assert.Nil(t, nilConfig.MaskSecrets())
}

func TestGenerateExampleConfig(t *testing.T) {
	var c Config
	require.NoError(t, json.Unmarshal([]byte(GenerateExampleConfig()), &c))
	assert.Equal(t, "${OPENAI_API_KEY}", c.LLM.APIKey)
	assert.Equal(t, "polly", c.Speech.Provider)
	assert.Empty(t, c.Validate())
}

func TestWriteExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), DirName, FileName)

	require.NoError(t, WriteExample(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.ErrorContains(t, WriteExample(path), "already exists")
}
