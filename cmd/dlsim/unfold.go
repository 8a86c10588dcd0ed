package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUnfoldCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "unfold NAME...",
		Short: "Print the fully unfolded definition of concepts",
		Long: `Unfold replaces every defined concept name by its definition, recursively,
until only primitive names remain.

Examples:
  dlsim unfold --kb family.krss Grandfather
  dlsim unfold --kb family.krss "(and Parent (some hasPet Dog))"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireKB(flags); err != nil {
				return err
			}
			logger := newLogger(cmd, flags.verbose)
			engine, cleanup, err := buildEngine(cmd.Context(), flags, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			for _, name := range args {
				expanded, err := engine.Unfold(name)
				if err != nil {
					return fmt.Errorf("unfold %s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", name, expanded)
			}
			return nil
		},
	}
}
