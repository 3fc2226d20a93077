// Package buildinfo carries the release identity stamped into kdeps at link
// time. It feeds the --version output and the User-Agent sent to Maven
// repositories.
//
//	go build -ldflags "-X github.com/matzehuels/kdeps/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/kdeps/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/kdeps/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/kdeps
package buildinfo

import "fmt"

// Unstamped builds report these values.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template is the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}

// UserAgent identifies kdeps to repositories. Development builds with a
// stamped commit report it, so repository logs can tell them apart.
func UserAgent() string {
	if Version == "dev" && Commit != "none" {
		return "kdeps/dev+" + Commit
	}
	return "kdeps/" + Version
}
