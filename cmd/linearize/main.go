// Command linearize checks register histories for linearizability.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/linearize/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
