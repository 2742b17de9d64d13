package cli

import (
	"github.com/h5p-mirror/h5pmirror/internal/config"
	"github.com/h5p-mirror/h5pmirror/internal/doctor"
	"github.com/spf13/cobra"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that a mirror run can start",
	Long: `Check credentials, the npm executable, the working directory, the registry
credentials file and the hub cache. With --fix, missing directories are created
and .npmrc permissions are tightened to 0600.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctor.Check(cmd.OutOrStdout(), config.Current(), doctorFix)
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Repair what can be repaired")
	rootCmd.AddCommand(doctorCmd)
}
