// Command decisionctl is the operator tool for the loan decision service:
// it seeds the profile topic, prepares credentials and keys, and calls the
// gRPC API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "decisionctl",
		Short:        "Operate the loan decision service",
		Version:      version,
		SilenceUsage: true,
	}
	root.SetIn(in)
	root.SetOut(out)

	root.AddCommand(
		newPublishProfilesCmd(),
		newHashPasswordCmd(),
		newGenKeysCmd(),
		newGenCertsCmd(),
		newDecideCmd(),
	)
	return root
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, d)
}
