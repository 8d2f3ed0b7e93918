// Command opql compiles serialized query parse trees into typed Operation
// trees against a CUE class schema.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/opql/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
