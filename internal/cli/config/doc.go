// Package config provides CLI configuration for the apikey tool.
//
// This package defines CLI-specific configuration:
//
//   - spec.go: Config struct (~/.config/apikey/config.yaml)
//   - loader.go: Configuration loading and saving
//
// Configuration includes:
//
//   - Default generation options (key prefix, token lengths)
//   - Keyring location
//   - Output format preferences
//   - Logging preferences
package config
