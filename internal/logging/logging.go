// Package logging builds the zerolog logger used for diagnostics. Operator
// facing progress lines are not logged here; see mirror.Reporter.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration options.
type Config struct {
	// Level is the minimum log level to output.
	Level string

	// Format is the output format: auto, console or json.
	Format string

	// Output is stderr, stdout, discard or a file path.
	Output string

	// NoColor disables color output in console mode.
	NoColor bool
}

// New creates a logger from cfg. A nil cfg yields an info-level console
// logger on stderr. The returned closer releases a log file opened for
// cfg.Output; if that file cannot be opened the logger falls back to stderr
// and says so.
func New(cfg *Config) (zerolog.Logger, io.Closer) {
	if cfg == nil {
		cfg = &Config{Level: "info", Format: "auto", Output: "stderr"}
	}

	out, closer, openErr := output(cfg.Output)

	level := ParseLevel(cfg.Level)
	logger := zerolog.New(writer(cfg, out)).
		Level(level).
		With().
		Timestamp().
		Logger()

	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	if openErr != nil {
		logger.Warn().Err(openErr).Str("output", cfg.Output).Msg("cannot open log file, logging to stderr")
	}
	return logger, closer
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "", "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "none", "off":
		return zerolog.Disabled
	default:
		if l, err := zerolog.ParseLevel(level); err == nil {
			return l
		}
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// output resolves a Config.Output value. Only a log file needs closing.
func output(name string) (io.Writer, io.Closer, error) {
	switch strings.ToLower(name) {
	case "", "stderr":
		return os.Stderr, nopCloser{}, nil
	case "stdout":
		return os.Stdout, nopCloser{}, nil
	case "discard", "none":
		return io.Discard, nopCloser{}, nil
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return os.Stderr, nopCloser{}, err
	}
	return f, f, nil
}

func writer(cfg *Config, out io.Writer) io.Writer {
	if out == io.Discard {
		return out
	}

	format := strings.ToLower(cfg.Format)
	if format == "" || format == "auto" {
		format = "json"
		if f, ok := out.(*os.File); ok && isTerminal(f) {
			format = "console"
		}
	}

	if format == "console" {
		return zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    cfg.NoColor || os.Getenv("NO_COLOR") != "",
		}
	}
	return out
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
