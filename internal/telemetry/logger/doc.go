// Package logger builds slog loggers that redact sensitive data
// before it reaches the output.
//
// Token-shaped values are masked (the key prefix and short token stay
// readable, the long token is cut down); attributes whose keys suggest
// secrets, like passphrase or hmac_key, are fully redacted. JSON and
// text formats are supported.
package logger
