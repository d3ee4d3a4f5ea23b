// Package buildinfo exposes the version stamped into the binary at build time.
package buildinfo

import "fmt"

// Overridden via -ldflags "-X github.com/sashob/springbox/pkg/buildinfo.Version=..."
// and the matching Commit and Date flags. A plain `go build` yields the
// dev defaults.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the build information for human output.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template is the cobra --version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
