// Command storefront drives the storefront state engine and serves a demo
// store backend.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/storefront/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
