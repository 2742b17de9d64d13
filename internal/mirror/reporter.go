package mirror

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Reporter prints the operator-facing progress lines of a run. Progress and
// success go to Out, failures to Err.
type Reporter struct {
	Out io.Writer
	Err io.Writer

	green *color.Color
	red   *color.Color
}

// NewReporter returns a reporter writing to out and errOut. Color is
// disabled when noColor is set or the terminal does not support it.
func NewReporter(out, errOut io.Writer, noColor bool) *Reporter {
	r := &Reporter{
		Out:   out,
		Err:   errOut,
		green: color.New(color.FgGreen),
		red:   color.New(color.FgRed),
	}
	if noColor || color.NoColor {
		r.green.DisableColor()
		r.red.DisableColor()
	}
	return r
}

// StdReporter writes to the process stdout and stderr.
func StdReporter() *Reporter {
	return NewReporter(os.Stdout, os.Stderr, false)
}

// InvalidParameters reports a configuration problem.
func (r *Reporter) InvalidParameters(err error) {
	r.red.Fprintf(r.Err, "Incorrect parameters: %s!\n", err)
}

// Downloading announces that a catalog entry is being installed.
func (r *Reporter) Downloading(machineName string) {
	fmt.Fprintf(r.Out, "[%s] Downloading updated/new content type from Hub...\n", machineName)
}

// Publishing announces a publish attempt for one installed library.
func (r *Reporter) Publishing(lib InstalledLibrary) {
	fmt.Fprintf(r.Out, "[%s] Publishing %s library to NPM registry...\n", lib.NewVersion.UberName(), lib.Type)
}

// Published reports a successful publish.
func (r *Reporter) Published(uberName string) {
	r.green.Fprintf(r.Out, "[%s] published!\n", uberName)
}

// PublishFailed reports a failed publish followed by the tool's message.
func (r *Reporter) PublishFailed(uberName string, err error) {
	r.red.Fprintf(r.Err, "[%s] Error publishing to NPM registry!\n", uberName)
	fmt.Fprintln(r.Err, err)
}

// Summary prints the closing line of a completed run.
func (r *Reporter) Summary(out Outcome) {
	if out.Errors == 0 {
		r.green.Fprintln(r.Out, "Finished with no errors!")
		return
	}
	r.red.Fprintf(r.Err, "Finished with %d errors!\n", out.Errors)
}

// Fatal prints the closing line of an aborted run.
func (r *Reporter) Fatal(err error) {
	r.red.Fprintf(r.Err, "Finished with a fatal error: %s\n", err)
}
