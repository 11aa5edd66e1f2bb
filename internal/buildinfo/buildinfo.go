// Package buildinfo carries the identifiers stamped at build time.
package buildinfo

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Short returns the most specific identifier available.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// String returns the identifier with the execution target, for the
// boot banner and the fault console.
func String() string {
	return "quartz " + Short() + " (" + target + ")"
}
