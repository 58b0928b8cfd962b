// Package command provides CLI command definitions for the apikey tool.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: Root command, global flags, config and keyring wiring
//   - generate.go: Key generation, optionally persisting records
//   - verify.go: Token verification against a digest or the keyring
//   - inspect.go: Token component display
//   - hash.go: Long token digest computation
//   - keys.go: Keyring management (list, delete, export, import)
//   - config.go: Configuration subcommand group
//   - version.go: Build information
//
// Commands follow a consistent pattern of parsing flags,
// calling the key library or keyring, and formatting output.
package command
