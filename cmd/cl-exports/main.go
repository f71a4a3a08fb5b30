// cl-exports creates and lists Commerce Layer export jobs.
package main

import (
	"os"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/cli"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/version"
)

// Version information, overridden with -ldflags at release time
var (
	Version   = "v1.0.0-dev"
	BuildTime = "unknown"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
