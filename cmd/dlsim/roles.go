package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/dlsim/pkg/dlsim/config"
)

func newRolesCmd(flags *globalFlags) *cobra.Command {
	var entails string

	cmd := &cobra.Command{
		Use:   "roles [ROLE...]",
		Short: "Show the role hierarchy declared in a knowledge base",
		Long: `Roles prints, for every role, its direct parents and every role it entails.
Without arguments all roles of the knowledge base are listed. With --entails
the entailment chain to the given super-role is explained instead, and the
command fails if some role does not entail it.

Examples:
  dlsim roles --kb family.krss
  dlsim roles --kb family.krss --entails hasChild hasSon hasDaughter`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireKB(flags); err != nil {
				return err
			}
			loader := config.Loader{KnowledgeBasePath: flags.kbPath}
			comp, err := loader.Load(cmd.Context())
			if err != nil {
				return err
			}
			h := comp.Roles

			names := args
			if len(names) == 0 {
				names = comp.KB.Roles()
			}

			out := cmd.OutOrStdout()
			if entails == "" {
				for _, role := range names {
					fmt.Fprintf(out, "%s: parents [%s] entails [%s]\n", role,
						strings.Join(h.Parents(role), " "),
						strings.Join(h.UnfoldRoleHierarchy(role), " "))
				}
				return nil
			}

			var missing []string
			for _, role := range names {
				fmt.Fprint(out, strings.TrimSuffix(h.Explain(role, entails), "\n")+"\n")
				if !h.Subsumes(entails, role) {
					missing = append(missing, role)
				}
			}
			if len(missing) > 0 {
				return fmt.Errorf("%s not entailed by %s", entails, strings.Join(missing, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&entails, "entails", "", "Explain how each role entails this super-role")
	return cmd
}
