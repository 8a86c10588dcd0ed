package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/dlsim/pkg/dlsim/explain"
)

// measureOutput is the --json form of a measurement
type measureOutput struct {
	ID            string          `json:"id"`
	Concept1      string          `json:"concept1"`
	Concept2      string          `json:"concept2"`
	Degree        string          `json:"degree"`
	Expanded1     string          `json:"expanded1"`
	Expanded2     string          `json:"expanded2"`
	ExecutionTime string          `json:"executionTime,omitempty"`
	Backtrace     []explain.Entry `json:"backtrace"`
}

func newMeasureCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "measure C1 C2",
		Short: "Measure the directed similarity sim(C1, C2)",
		Long: `Measure unfolds both concepts, builds their description trees and reports
how well C1 is covered by C2, together with the backtrace that explains the
degree. C1 and C2 may be concept names or concept expressions.

Examples:
  dlsim measure --kb family.krss ProudParent Parent
  dlsim measure --kb family.krss --profile profile.yaml --db runs.db --json Father Parent`,
		Args: cobra.ExactArgs(2),
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

			res, err := engine.Measure(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(measureOutput{
					ID:            res.Report.ID,
					Concept1:      res.Report.Concept1,
					Concept2:      res.Report.Concept2,
					Degree:        res.Report.Degree,
					Expanded1:     res.Expanded1,
					Expanded2:     res.Expanded2,
					ExecutionTime: res.ExecutionTime,
					Backtrace:     res.Report.Entries,
				})
			}

			for _, line := range res.Report.Lines() {
				fmt.Fprintln(out, line)
			}
			if res.ExecutionTime != "" {
				fmt.Fprintf(out, "took %s (run %s)\n", res.ExecutionTime, res.Report.ID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}
