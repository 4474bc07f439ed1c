// Command gapscope finds the entities and keywords that competitor pages
// cover and a client page does not, and advises how to work them in.
package main

import (
	"os"

	"github.com/custodia-labs/gapscope/internal/adapters/driving/cli"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
