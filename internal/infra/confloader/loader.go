package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the environment variable prefix recognized by
// LoadEnv.
const DefaultEnvPrefix = "APIKEY_"

// Loader merges configuration from a YAML file and environment
// variables into one koanf tree, later sources overriding earlier
// ones.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	loaded    bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile sets the configuration file read by Load.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.filePath = path }
}

// NewLoader creates a loader with the APIKEY_ prefix and no file.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the configured file (when set), applies environment
// overrides, and unmarshals the merged tree into target via koanf
// struct tags.
func (l *Loader) Load(target any) error {
	if l.filePath != "" {
		if err := l.LoadFile(l.filePath); err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
	}

	if err := l.LoadEnv(); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	l.loaded = true
	return nil
}

// LoadFile merges a YAML file into the tree. An empty path is a no-op.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}
	return nil
}

// LoadEnv merges prefixed environment variables into the tree.
// APIKEY_KEYRING_PATH becomes the key "keyring.path".
func (l *Loader) LoadEnv() error {
	if err := l.k.Load(env.Provider(l.envPrefix, ".", l.envKey), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// envKey maps an environment variable name to a config key.
func (l *Loader) envKey(name string) string {
	name = strings.TrimPrefix(name, l.envPrefix)
	return strings.ReplaceAll(strings.ToLower(name), "_", ".")
}

// LoadMap merges literal key/value pairs into the tree. Used for flag
// overrides and in tests.
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Unmarshal decodes the merged tree into target via koanf struct tags.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// GetString returns the string value at key.
func (l *Loader) GetString(key string) string { return l.k.String(key) }

// GetInt returns the int value at key.
func (l *Loader) GetInt(key string) int { return l.k.Int(key) }

// GetBool returns the bool value at key.
func (l *Loader) GetBool(key string) bool { return l.k.Bool(key) }

// IsLoaded reports whether Load has completed.
func (l *Loader) IsLoaded() bool { return l.loaded }

// All returns the merged tree as a flat key map.
func (l *Loader) All() map[string]any { return l.k.All() }

// Keys returns every key in the merged tree.
func (l *Loader) Keys() []string { return l.k.Keys() }

// mapProvider adapts a flat key map to koanf's provider interface.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("confloader: map provider has no byte form")
}

func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}
