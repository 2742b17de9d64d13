package mirror

import "errors"

// Configuration errors. Each missing credential has its own message so the
// operator knows which variable to set.
var (
	ErrMissingToken = errors.New("you must pass a NPM token with the environment variable NPM_AUTH_TOKEN")
	ErrMissingUser  = errors.New("you must pass a NPM username with the environment variable NPM_USER")
)

// ErrCatalogNotConverged is returned when the catalog still offers an
// installable entry after the iteration limit was reached.
var ErrCatalogNotConverged = errors.New("catalog did not converge")

// Exit codes of a run. A run with publish failures exits with the number of
// failures, capped at MaxExitCode.
const (
	ExitOK      = 0
	ExitFailure = 1
	MaxExitCode = 255
)
