// Package version holds the tool version, set at build time via ldflags.
package version

// Version is the archlint release version.
var Version = "0.1.0"
