package mirror

import (
	"context"

	"github.com/rs/zerolog"
)

// Dispatcher hands prepared package directories to the publisher and keeps
// the error tally. A failed publish is counted, never returned.
type Dispatcher struct {
	Publisher Publisher
	Reporter  *Reporter
	DryRun    bool
	Logger    zerolog.Logger
}

// Dispatch publishes dir and records the result in out.
func (d *Dispatcher) Dispatch(ctx context.Context, uberName, dir string, out *Outcome) {
	err := d.Publisher.Publish(ctx, dir, d.DryRun)
	if err != nil {
		out.Errors++
		d.Logger.Debug().Err(err).Str("library", uberName).Str("dir", dir).Msg("publish failed")
		d.Reporter.PublishFailed(uberName, err)
		return
	}
	out.Published++
	d.Logger.Debug().Str("library", uberName).Bool("dry_run", d.DryRun).Msg("publish succeeded")
	d.Reporter.Published(uberName)
}
