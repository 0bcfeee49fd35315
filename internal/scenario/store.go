// Package scenario loads the named persona prompts that steer each conversation.
package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFileName is the scenario file looked up when no path is configured.
	DefaultFileName = "scenarios.json"

	promptExt = ".md"
)

var (
	// ErrNotFound is returned by Lookup for an unknown scenario name.
	ErrNotFound = errors.New("scenario not found")
	// ErrEmptyPrompt is returned by Lookup for a listed scenario whose prompt is blank.
	ErrEmptyPrompt = errors.New("scenario has an empty prompt")
)

// ConfigurationError reports a missing or malformed scenario source.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("scenario source %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Store is a read-only mapping from scenario name to system prompt.
type Store struct {
	source    string
	scenarios map[string]string
	names     []string
}

// Load reads scenarios from path. A path may be a JSON object file, a YAML
// mapping file (.yaml, .yml), or a directory of <name>.md prompt files.
func Load(path string) (*Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}

	var scenarios map[string]string
	if info.IsDir() {
		scenarios, err = loadDir(path)
	} else {
		scenarios, err = loadFile(path)
	}
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}

	store, err := New(scenarios)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	store.source = path

	log.Debug().Str("path", path).Int("count", len(store.names)).Msg("Loaded scenarios")
	return store, nil
}

// New builds a store from an in-memory mapping. The mapping is copied.
func New(scenarios map[string]string) (*Store, error) {
	if len(scenarios) == 0 {
		return nil, errors.New("no scenarios defined")
	}

	s := &Store{scenarios: make(map[string]string, len(scenarios))}
	for name, prompt := range scenarios {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("scenario with empty name")
		}
		s.scenarios[name] = prompt
		s.names = append(s.names, name)
	}
	sort.Strings(s.names)
	return s, nil
}

func loadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenarios map[string]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &scenarios); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &scenarios); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	}
	return scenarios, nil
}

func loadDir(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	scenarios := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), promptExt) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file: %w", err)
		}
		scenarios[strings.TrimSuffix(entry.Name(), promptExt)] = string(content)
	}
	return scenarios, nil
}

// Lookup returns the system prompt for name. A scenario listed with a blank
// prompt is selectable but cannot be used.
func (s *Store) Lookup(name string) (string, error) {
	prompt, ok := s.scenarios[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyPrompt, name)
	}
	return prompt, nil
}

// Has reports whether name is a known scenario.
func (s *Store) Has(name string) bool {
	_, ok := s.scenarios[name]
	return ok
}

// Names returns all scenario names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// Source returns the path the store was loaded from, if any.
func (s *Store) Source() string {
	return s.source
}

// Resolve picks the scenario source path. An explicit path wins; otherwise
// scenarios.json in the working directory, then next to the executable.
func Resolve(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), DefaultFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return DefaultFileName
}
