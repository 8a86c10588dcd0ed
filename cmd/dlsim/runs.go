package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newRunsCmd(flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List persisted measurement runs",
		Long: `Runs lists the measurements saved in the --db database, most recent first.

Examples:
  dlsim runs --db runs.db
  dlsim runs --db runs.db --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.dbPath == "" {
				return fmt.Errorf("--db required")
			}
			logger := newLogger(cmd, flags.verbose)
			engine, cleanup, err := buildEngine(cmd.Context(), flags, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			runs, err := engine.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range runs {
				fmt.Fprintf(out, "%s  %s  sim(%s, %s) = %s  [%d records]\n",
					r.ID, r.CreatedAt.Format(time.RFC3339), r.Concept1, r.Concept2, r.Degree, len(r.Records))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")
	return cmd
}
