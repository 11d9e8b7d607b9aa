// Package version carries build-time identification, overridden via
// -ldflags at release time.
package version

var (
	Version = "dev"
	Commit  = "none"
)
