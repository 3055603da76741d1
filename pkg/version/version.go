// Package version holds build-time version metadata, injected via ldflags.
package version

var (
	// Version is the release version, "dev" for local builds
	Version = "dev"
	// Commit is the git commit the binary was built from
	Commit = "unknown"
)
