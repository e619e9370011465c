// Package version carries the build version, set with
// -ldflags "-X kmertax/internal/version.Version=...".
package version

var Version = "dev"
