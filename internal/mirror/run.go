package mirror

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// SessionFactory opens the hub/editor session. It is only called once the
// credentials have been checked.
type SessionFactory func(ctx context.Context) (Session, error)

// Runner sequences one complete mirror run and maps its result to an exit
// code.
type Runner struct {
	AuthToken     string
	Operator      string
	DryRun        bool
	MaxIterations int

	NewSession  SessionFactory
	Storage     Storage
	Publisher   Publisher
	Credentials CredentialWriter
	Reporter    *Reporter
	Logger      zerolog.Logger
}

// Run performs the run and returns the process exit code: 0 when every
// publish succeeded, the number of failed publishes otherwise, and 1 for
// missing credentials or a fatal error. A fatal error inside the loop wipes
// the library storage.
func (r *Runner) Run(ctx context.Context) int {
	if err := r.checkCredentials(); err != nil {
		r.Reporter.InvalidParameters(err)
		return ExitFailure
	}

	session, err := r.NewSession(ctx)
	if err != nil {
		return r.fail(fmt.Errorf("opening hub session: %w", err))
	}

	r.Logger.Info().Msg("refreshing content type catalog")
	if err := session.RefreshCatalog(ctx); err != nil {
		return r.fail(fmt.Errorf("refreshing catalog: %w", err))
	}

	if err := r.Credentials.WriteCredentials(r.AuthToken); err != nil {
		return r.fail(err)
	}

	maxIter := r.MaxIterations
	if maxIter < 0 {
		maxIter = DefaultMaxIterations
	}
	ctrl := &Controller{
		Session: session,
		Storage: r.Storage,
		Dispatcher: &Dispatcher{
			Publisher: r.Publisher,
			Reporter:  r.Reporter,
			DryRun:    r.DryRun,
			Logger:    r.Logger,
		},
		Reporter:      r.Reporter,
		Operator:      r.Operator,
		MaxIterations: maxIter,
		Logger:        r.Logger,
	}

	out, err := ctrl.Run(ctx)
	if err != nil {
		r.Logger.Error().Err(err).Int("published", out.Published).Int("errors", out.Errors).Msg("mirror loop aborted")
		if cerr := r.Storage.RemoveAll(); cerr != nil {
			r.Logger.Error().Err(cerr).Msg("removing library storage")
		}
		return r.fail(err)
	}

	r.Logger.Info().Int("published", out.Published).Int("errors", out.Errors).Bool("dry_run", r.DryRun).Msg("mirror run finished")
	r.Reporter.Summary(out)
	return ExitCode(out)
}

// ExitCode maps a completed run to its exit code.
func ExitCode(out Outcome) int {
	switch {
	case out.Errors <= 0:
		return ExitOK
	case out.Errors > MaxExitCode:
		return MaxExitCode
	default:
		return out.Errors
	}
}

// checkCredentials reports the token before the user.
func (r *Runner) checkCredentials() error {
	if r.AuthToken == "" {
		return ErrMissingToken
	}
	if r.Operator == "" {
		return ErrMissingUser
	}
	return nil
}

func (r *Runner) fail(err error) int {
	r.Reporter.Fatal(err)
	return ExitFailure
}
