package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cognicore/dlsim/pkg/dlsim"
	"github.com/cognicore/dlsim/pkg/dlsim/config"
	"github.com/cognicore/dlsim/pkg/dlsim/internalerr"
	"github.com/cognicore/dlsim/pkg/dlsim/reasoner"
	"github.com/cognicore/dlsim/pkg/dlsim/roles"
)

// Role unfolding strategies selectable with --role-strategy.
const (
	roleStrategyHierarchy = "hierarchy"
	roleStrategyIdentity  = "identity"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	kbPath       string
	profilePath  string
	dbPath       string
	roleStrategy string
	verbose      bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "dlsim",
		Short: "Directed similarity of description logic concepts",
		Long: `dlsim unfolds concept definitions of a KRSS knowledge base and measures
how well one concept is covered by another, with an explanation of every
matched primitive and existential.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.kbPath, "kb", "", "KRSS knowledge base file")
	root.PersistentFlags().StringVar(&flags.profilePath, "profile", "", "Preference profile YAML file (optional)")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database for measurement runs (optional)")
	root.PersistentFlags().StringVar(&flags.roleStrategy, "role-strategy", roleStrategyHierarchy,
		"Role unfolding: hierarchy (declared super-roles) or identity (roles match only themselves)")
	root.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Enable debug logging")

	root.AddCommand(
		newUnfoldCmd(flags),
		newMeasureCmd(flags),
		newRunsCmd(flags),
		newRolesCmd(flags),
	)
	return root
}

func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// buildEngine loads configuration and wires the similarity engine.
// The returned cleanup closes the run store, if any.
func buildEngine(ctx context.Context, flags *globalFlags, logger *slog.Logger) (*dlsim.Dlsim, func(), error) {
	loader := config.Loader{
		KnowledgeBasePath: flags.kbPath,
		ProfilePath:       flags.profilePath,
		DBPath:            flags.dbPath,
	}
	// checked before Load so a bad flag never opens the store
	if _, err := roleUnfolder(flags.roleStrategy, nil); err != nil {
		return nil, nil, err
	}
	comp, err := loader.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	unfolder, _ := roleUnfolder(flags.roleStrategy, comp.Roles)

	engine, err := dlsim.New(dlsim.Options{
		KB:      comp.KB,
		Profile: &comp.Profile,
		Roles:   unfolder,
		Store:   comp.Store,
		Logger:  logger,
	})
	if err != nil {
		if comp.Store != nil {
			comp.Store.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		if err := engine.Close(); err != nil {
			logger.Warn("close engine", slog.String("error", err.Error()))
		}
	}
	return engine, cleanup, nil
}

// roleUnfolder picks the role unfolding strategy named by --role-strategy.
func roleUnfolder(strategy string, h *roles.Hierarchy) (reasoner.RoleUnfolder, error) {
	switch strategy {
	case "", roleStrategyHierarchy:
		if h == nil {
			return nil, nil
		}
		return h, nil
	case roleStrategyIdentity:
		return roles.Identity{}, nil
	}
	return nil, fmt.Errorf("%w: unknown role strategy %q (want %s or %s)",
		internalerr.ErrInvalidConfig, strategy, roleStrategyHierarchy, roleStrategyIdentity)
}

func requireKB(flags *globalFlags) error {
	if flags.kbPath == "" {
		return fmt.Errorf("--kb required")
	}
	return nil
}
