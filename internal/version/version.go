// Package version holds build metadata set with -ldflags.
package version

import "fmt"

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String reports the version with its commit and build date.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// IsRelease reports whether the binary was built with a release version.
func IsRelease() bool {
	return Version != "dev" && Version != ""
}
