// Package buildinfo exposes the version stamped into the apikey binary.
//
// Version, Commit, and BuildTime are injected at build time:
//
//	go build -ldflags "-X .../internal/infra/buildinfo.Version=v1.2.0"
//
// Unstamped builds report "dev".
package buildinfo
