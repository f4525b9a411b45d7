// Command relmap renders relation specs as SQL and projects records out of
// query results.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/relmap/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
