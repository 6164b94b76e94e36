// Command streamtrack tracks per-stream run-states of data syncs.
package main

import (
	"os"

	"github.com/custodia-labs/streamtrack/internal/adapters/driving/cli"
	"github.com/custodia-labs/streamtrack/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetSettingsLoader(loadSettings)
	cli.SetRuntimeOpener(openRuntime)

	if err := cli.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
