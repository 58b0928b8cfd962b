// Package main provides the entry point for the apikey CLI.
//
// The CLI generates, inspects, and verifies prefixed API keys:
//
//   - Key generation (with optional keyring persistence)
//   - Token verification against a digest or the keyring
//   - Token inspection with the long token masked
//   - Keyring management (list, delete, export, import)
//   - Configuration management
//
// Usage:
//
//	apikey [command] [flags]
//	apikey generate --key-prefix my_company
//	apikey verify my_company_BRTRKFsL_... --hash d70d98...
//	apikey keys list --output json
package main
