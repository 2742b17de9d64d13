package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/h5p-mirror/h5pmirror/internal/branding"
	"github.com/h5p-mirror/h5pmirror/internal/config"
	"github.com/h5p-mirror/h5pmirror/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	noColor   bool
	logger    = zerolog.Nop()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` copies H5P content types from the H5P Hub into the npm registry.

Every library the hub offers is downloaded, given a package.json derived from
its library.json and published as @<NPM_USER>/<machine-name>.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		s := config.Current()
		closeLog()
		logger, logCloser = logging.New(&logging.Config{
			Level:   s.Log.Level,
			Format:  s.Log.Format,
			Output:  s.Log.Output,
			NoColor: noColor,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().String("work-dir", "", "Working directory holding libraries, temp files and the hub cache")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyWorkDir, rootCmd.PersistentFlags().Lookup("work-dir"))
}

// Execute runs the root command with build info injected via ldflags. An
// interrupt cancels the command's context.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer closeLog()
	return rootCmd.ExecuteContext(ctx)
}

func closeLog() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}
