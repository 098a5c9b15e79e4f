// Package build carries release identification stamped in at link time.
package build

import "fmt"

// Stamped via -ldflags "-X github.com/blitz-web/blitz/internal/build.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the full identification line shown by --version.
func String() string {
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}
