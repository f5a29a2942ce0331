// Command ds-cumulus-export maps Cumulus catalog records to search documents.
package main

import (
	"os"

	"github.com/kb-dk/ds-cumulus-export/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
