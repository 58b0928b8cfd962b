// Package keyring stores issued API key records and verifies presented
// tokens against them.
//
// A Record keeps the short token (the lookup key), the long token digest,
// and bookkeeping fields. The long token itself is never stored; holders
// present the full token and the manager re-derives the digest for a
// constant-time comparison.
//
// Two Store implementations ship with the package: MemoryStore for tests
// and short-lived tools, and BadgerStore for durable single-node storage.
// Manager ties a Store to the generation and verification primitives of
// the parent package, and its Export/Import methods move records between
// keyrings as passphrase-encrypted snapshots.
package keyring
