package buildinfo

import "fmt"

// These variables are intended to be set via -ldflags at build time:
//
//	-X 'github.com/m3rciful/iteachbot/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/iteachbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/iteachbot/core/buildinfo.Date=2025-08-30T12:00:00Z'
var (
	Version = "dev"
	Commit  = "local"
	Date    = ""
)

// String renders a one-line build summary for logs and health responses.
func String() string {
	if Date == "" {
		return fmt.Sprintf("%s (%s)", Version, Commit)
	}
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}
