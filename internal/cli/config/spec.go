package config

import apikey "github.com/truestamp/prefixed-api-key"

// Config is the configuration for the apikey CLI.
type Config struct {
	// Defaults applied to generate when flags are absent.
	Defaults DefaultsConfig `koanf:"defaults" yaml:"defaults" json:"defaults"`

	// Keyring holds local key storage settings.
	Keyring KeyringConfig `koanf:"keyring" yaml:"keyring" json:"keyring"`

	// Output is the default output format (table, json, yaml).
	Output string `koanf:"output" yaml:"output" json:"output"`

	// Log holds logging settings.
	Log LogConfig `koanf:"log" yaml:"log" json:"log"`
}

// DefaultsConfig holds default generation options.
type DefaultsConfig struct {
	KeyPrefix   string `koanf:"key_prefix" yaml:"key_prefix" json:"key_prefix"`
	ShortPrefix string `koanf:"short_prefix" yaml:"short_prefix" json:"short_prefix"`
	ShortLength int    `koanf:"short_length" yaml:"short_length" json:"short_length"`
	LongLength  int    `koanf:"long_length" yaml:"long_length" json:"long_length"`
}

// KeyringConfig holds local key storage settings.
type KeyringConfig struct {
	// Path is the badger keyring directory.
	Path string `koanf:"path" yaml:"path" json:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level" json:"level"`
	Format string `koanf:"format" yaml:"format" json:"format"`
}

// Default returns the default CLI configuration.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			ShortLength: apikey.DefaultShortTokenLength,
			LongLength:  apikey.DefaultLongTokenLength,
		},
		Keyring: KeyringConfig{
			Path: DefaultKeyringPath(),
		},
		Output: "table",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
