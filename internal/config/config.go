// Where: internal/config/config.go
// What: User configuration file load/save helpers.
// Why: Manage <root>/config.yml consistently and atomically.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/poruru-code/tutor-newrelic/internal/envutil"
	"github.com/poruru-code/tutor-newrelic/internal/meta"
)

// ErrUnknownKey is returned when a requested setting does not exist.
var ErrUnknownKey = errors.New("unknown setting")

// Config maps setting names to values decoded from YAML.
type Config map[string]any

// Get returns the value stored under key.
func (c Config) Get(key string) (any, error) {
	value, ok := c[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return value, nil
}

// String returns the value under key formatted as text; missing keys yield "".
func (c Config) String(key string) string {
	value, ok := c[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// Keys returns the setting names in sorted order.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c))
	for key := range c {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// WithPrefix returns the subset of settings whose names start with prefix.
func (c Config) WithPrefix(prefix string) Config {
	out := Config{}
	for key, value := range c {
		if strings.HasPrefix(key, prefix) {
			out[key] = value
		}
	}
	return out
}

// DefaultRoot resolves the project root from TUTOR_ROOT or the user data directory.
func DefaultRoot() (string, error) {
	if override := envutil.GetHostEnv("ROOT"); override != "" {
		return filepath.Abs(override)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, meta.DataDir), nil
}

// Path returns the user configuration file path under root.
func Path(root string) string {
	return filepath.Join(root, meta.ConfigFile)
}

// LoadUser reads the user configuration. A missing file yields an empty Config.
func LoadUser(root string) (Config, error) {
	payload, err := os.ReadFile(Path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return nil, err
	}

	// Decode into a plain map so nested mappings stay map[string]any.
	var raw map[string]any
	if err := yaml.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", Path(root), err)
	}
	if raw == nil {
		return Config{}, nil
	}
	return Config(raw), nil
}

// SaveUser writes the user configuration atomically.
func SaveUser(root string, cfg Config) error {
	payload, err := yaml.Marshal(map[string]any(cfg))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	return renameio.WriteFile(Path(root), payload, 0o644)
}

// ParseValue decodes a command-line or environment value as YAML so that
// "true", "3", and "[a, b]" keep their types. Undecodable input stays a string.
func ParseValue(raw string) any {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
		return raw
	}
	return value
}

// ApplyAssignments applies KEY=VALUE sets and KEY unsets to cfg in place.
func ApplyAssignments(cfg Config, sets []string, unsets []string) error {
	for _, assignment := range sets {
		key, raw, ok := strings.Cut(assignment, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("invalid assignment %q: expected KEY=VALUE", assignment)
		}
		cfg[key] = ParseValue(raw)
	}
	for _, key := range unsets {
		delete(cfg, strings.TrimSpace(key))
	}
	return nil
}
