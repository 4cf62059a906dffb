// Package version holds the build version of the application.
package version

// Version is overridden at build time with -ldflags "-X .../internal/version.Version=...".
var Version = "0.1.0-dev"
