// Package version carries build metadata injected with -ldflags:
//
//	go build -ldflags "-X github.com/smazurov/camoufox-launcher/internal/version.Version=v1.2.0"
package version

import (
	"fmt"
	"runtime"
)

// Name is the program name used in version output and logs.
const Name = "camoufox-launcher"

var (
	// Version is the application version, set via ldflags during build.
	Version = "dev"
	// GitCommit is the git commit hash, set via ldflags during build.
	GitCommit = "unknown"
	// BuildDate is the build timestamp, set via ldflags during build.
	BuildDate = "unknown"
)

// Info contains version and build metadata.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns version and build information.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String formats the info as a single line, e.g.
// "camoufox-launcher v1.2.0 (abc1234, built 2025-01-02, go1.24.11 linux/amd64)".
func (i Info) String() string {
	return fmt.Sprintf("%s %s (%s, built %s, %s %s)",
		Name, i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform)
}
