// Package version contains build information stamped in via ldflags.
package version

var (
	// Version is the application version.
	Version = "0.0.0"

	// GitCommit is the git commit hash of the build.
	GitCommit = "unknown"

	// BuildDate is the timestamp of the build.
	BuildDate = "unknown"
)
