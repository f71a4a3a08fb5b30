// Package version holds build information shared by the CLI packages.
package version

// Version is the build version string, set by the main package or ldflags.
// Format: vX.Y.Z or vX.Y.Z-dev for development builds.
var Version = "v1.0.0-dev"

// BuildTime is the build timestamp, set by ldflags during build.
var BuildTime = "unknown"
