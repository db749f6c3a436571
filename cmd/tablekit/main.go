// tablekit composes queries and applies row changes against SQLite
// databases from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/tablekit/internal/cli"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0"
var version = "dev"

func main() {
	// Cancel in-flight statements on Ctrl+C or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := cli.NewRootCommand()
	cmd.Version = version

	if err := cmd.ExecuteContext(ctx); err != nil {
		// Command failures were already reported through the formatter
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		cancel()
		os.Exit(cli.GetExitCode(err))
	}
}
