package cli

import (
	"fmt"

	"github.com/getmockd/httpspy/pkg/config"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE|GLOB...",
		Short: "Validate plan files without serving them",
		Long: `Validate checks each plan file against the plan schema, then builds its
server settings and test plan. Arguments may be doublestar patterns such as
'plans/**/*.yaml'.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := config.Expand(args...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range paths {
				if err := validateFile(path); err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s\n%v\n", path, err)
					continue
				}
				fmt.Fprintf(out, "ok %s\n", path)
			}
			if failed > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d plan files are invalid\n", failed, len(paths))
				return errReported
			}
			return nil
		},
	}
}

func validateFile(path string) error {
	f, err := config.LoadFromFile(path)
	if err != nil {
		return err
	}
	if _, err := f.SpyConfig(); err != nil {
		return err
	}
	_, err = f.BuildPlan()
	return err
}
