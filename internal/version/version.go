// Package version exposes build metadata stamped in via -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Overridden at build time:
//
//	go build -ldflags "-X .../internal/version.Version=v1.2.3"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

const appName = "catalog-validator"

// Info returns the build metadata plus the Go runtime version, keyed for the
// /version endpoint.
func Info() map[string]string {
	return map[string]string{
		"name":      appName,
		"version":   Version,
		"gitCommit": GitCommit,
		"buildTime": BuildTime,
		"goVersion": runtime.Version(),
	}
}

// String renders a one-line description for startup logs.
func String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", appName, Version, GitCommit, BuildTime)
}
