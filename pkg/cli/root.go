package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// errReported marks failures whose details were already printed.
var errReported = errors.New("failure reported")

// NewRootCmd builds the httpspy command tree writing to the given streams.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "httpspy",
		Short: "httpspy is a scriptable HTTP test double",
		Long: `httpspy serves canned responses from a test plan and verifies that the
requests it received match the plan's expectations.

Plans are YAML or JSON files; see 'httpspy validate' to check one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(newServeCmd(), newValidateCmd(), newVersionCmd())
	return root
}

// Main runs the CLI with os.Args and returns the process exit code.
func Main() int {
	return run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}
