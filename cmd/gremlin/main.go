// Command gremlin turns recorded sessions and inferred state models into
// end-to-end tests.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/gremlin/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gremlin:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
