// Package version carries build metadata. Release builds override the
// variables with -ldflags "-X".
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "v2.1 (Visual Upgrade)" // shown in the page footer
	Commit    = "none"                 // ex: abcd123
	BuildDate = "unknown"              // ex: 2026-01-11T18:42:00Z
	GoVersion = runtime.Version()      // go version
)

// String formats the build metadata for startup logs.
func String() string {
	return fmt.Sprintf("%s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
