// Package buildinfo carries the version stamped into the libman binary.
//
// Values are injected with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/libman/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/libman/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/libman/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"
	// Commit is the git commit SHA.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the --version template for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// UserAgent identifies libman to CDNs and registries.
func UserAgent() string {
	return "libman/" + Version + " (+https://github.com/matzehuels/libman)"
}
