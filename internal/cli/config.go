package cli

import (
	"fmt"
	"strings"

	"github.com/h5p-mirror/h5pmirror/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mirror settings",
	Long: `Read and write settings stored at ~/.h5pmirror/config.yaml.

Environment variables (H5PMIRROR_<KEY>, with dots as underscores) and .env
files take precedence over the file.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, displayValue(key, value))
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), displayValue(args[0], config.Get(args[0])))
		return nil
	},
}

// displayValue hides the registry token.
func displayValue(key, value string) string {
	if key == config.KeyAuthToken && value != "" {
		return strings.Repeat("*", 8)
	}
	return value
}
