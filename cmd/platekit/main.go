package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/platekit/internal/cli"
	perrors "github.com/matzehuels/platekit/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, perrors.UserMessage(err))
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes a full plate from other failures so scripts can
// stop a batch cleanly.
func exitCode(err error) int {
	if perrors.IsCapacity(err) {
		return 3
	}
	return 1
}
