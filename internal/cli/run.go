package cli

import (
	"context"
	"errors"

	"github.com/h5p-mirror/h5pmirror/internal/config"
	"github.com/h5p-mirror/h5pmirror/internal/mirror"
	"github.com/h5p-mirror/h5pmirror/internal/registry"
	"github.com/h5p-mirror/h5pmirror/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Mirror every installable hub content type to npm",
	Long: `Refresh the hub catalog, then install and publish content types until the
hub offers nothing new.

Credentials come from NPM_AUTH_TOKEN and NPM_USER; DRY_RUN=true (or --dry-run)
runs npm publish with --dry-run. The command exits with the number of failed
publishes, or 1 if the run could not complete. On a fatal error the library
storage is removed so the next run starts clean.`,
	Args: cobra.NoArgs,
	RunE: runMirror,
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "Validate packages without publishing them")
	runCmd.Flags().Int("max-iterations", mirror.DefaultMaxIterations, "Maximum number of installs before giving up (0 for no limit)")
	_ = viper.BindPFlag(config.KeyDryRun, runCmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag(config.KeyMaxIterations, runCmd.Flags().Lookup("max-iterations"))
	rootCmd.AddCommand(runCmd)
}

func runMirror(cmd *cobra.Command, args []string) error {
	s := config.Current()
	reporter := mirror.NewReporter(cmd.OutOrStdout(), cmd.ErrOrStderr(), noColor)

	if err := s.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingToken) || errors.Is(err, config.ErrMissingUser) {
			reporter.InvalidParameters(err)
			return &ExitError{Code: mirror.ExitFailure}
		}
		return err
	}

	store := storage.New(s.LibrariesDir())
	runner := &mirror.Runner{
		AuthToken:     s.AuthToken,
		Operator:      s.User,
		DryRun:        s.DryRun,
		MaxIterations: s.MaxIterations,
		NewSession: func(context.Context) (mirror.Session, error) {
			session, err := openSession(s, store)
			if err != nil {
				return nil, err
			}
			return session, nil
		},
		Storage:     store,
		Publisher:   registry.NewNPMPublisher(s.Registry.NPMPath, logger),
		Credentials: registry.NPMRC{Path: s.NPMRC(), Host: s.Registry.Host},
		Reporter:    reporter,
		Logger:      logger,
	}

	logger.Debug().
		Str("user", s.User).
		Bool("dry_run", s.DryRun).
		Str("libraries", store.Root()).
		Msg("starting mirror run")

	if code := runner.Run(cmd.Context()); code != mirror.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}
