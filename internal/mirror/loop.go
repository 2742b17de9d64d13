package mirror

import (
	"context"
	"fmt"

	"github.com/h5p-mirror/h5pmirror/internal/registry"
	"github.com/rs/zerolog"
)

// DefaultMaxIterations bounds the number of installs one run performs.
const DefaultMaxIterations = 1000

type state int

const (
	stateScanning state = iota
	stateInstalling
)

func (s state) String() string {
	switch s {
	case stateScanning:
		return "scanning"
	case stateInstalling:
		return "installing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Controller runs the mirror loop until the catalog offers nothing left to
// install.
type Controller struct {
	Session    Session
	Storage    Storage
	Dispatcher *Dispatcher
	Reporter   *Reporter

	// Operator is the npm scope packages are published under.
	Operator string
	// MaxIterations caps the number of installs; 0 means no cap.
	MaxIterations int

	Logger zerolog.Logger
}

// Run alternates between scanning a fresh catalog snapshot and installing the
// selected entry. Publish failures are tallied in the returned Outcome; any
// other error stops the loop and is returned.
func (c *Controller) Run(ctx context.Context) (Outcome, error) {
	var (
		out        Outcome
		current    = stateScanning
		candidate  CatalogEntry
		iterations int
	)

	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		switch current {
		case stateScanning:
			catalog, err := c.Session.Catalog(ctx)
			if err != nil {
				return out, fmt.Errorf("fetching catalog: %w", err)
			}
			next, ok := SelectNext(catalog)
			if !ok {
				c.Logger.Debug().Int("iterations", iterations).Msg("catalog converged")
				return out, nil
			}
			if c.MaxIterations > 0 && iterations >= c.MaxIterations {
				return out, fmt.Errorf("%w: %s still installable after %d installs",
					ErrCatalogNotConverged, next.MachineName, iterations)
			}
			candidate = next
			current = stateInstalling

		case stateInstalling:
			iterations++
			if err := c.install(ctx, candidate, &out); err != nil {
				return out, err
			}
			current = stateScanning
		}
	}
}

// SelectNext returns the first entry in catalog order that is not installed
// and may be installed.
func SelectNext(catalog []CatalogEntry) (CatalogEntry, bool) {
	for _, e := range catalog {
		if e.Installable() {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// install installs one catalog entry and publishes every library the install
// produced, in the order the session returned them.
func (c *Controller) install(ctx context.Context, entry CatalogEntry, out *Outcome) error {
	c.Reporter.Downloading(entry.MachineName)

	installed, err := c.Session.Install(ctx, entry.MachineName)
	if err != nil {
		return fmt.Errorf("installing %s: %w", entry.MachineName, err)
	}
	c.Logger.Debug().Str("content_type", entry.MachineName).Int("libraries", len(installed)).Msg("installed")

	for _, lib := range installed {
		c.Reporter.Publishing(lib)

		dir, err := c.preparePackage(ctx, lib)
		if err != nil {
			return err
		}
		c.Dispatcher.Dispatch(ctx, lib.NewVersion.UberName(), dir, out)
	}
	return nil
}

// preparePackage writes package.json into the library's storage directory and
// returns that directory.
func (c *Controller) preparePackage(ctx context.Context, lib InstalledLibrary) (string, error) {
	m, err := c.Session.LoadManifest(ctx, lib.NewVersion)
	if err != nil {
		return "", fmt.Errorf("loading manifest of %s: %w", lib.NewVersion.UberName(), err)
	}

	dir := c.Storage.LibraryDir(m.LibraryName)
	if err := registry.WritePackageJSON(dir, registry.NewPackageJSON(c.Operator, m)); err != nil {
		return "", fmt.Errorf("preparing package for %s: %w", m.UberName(), err)
	}
	return dir, nil
}
