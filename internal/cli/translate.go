package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/h5p-mirror/h5pmirror/internal/config"
	"github.com/h5p-mirror/h5pmirror/internal/manifest"
	"github.com/h5p-mirror/h5pmirror/internal/registry"
	"github.com/spf13/cobra"
)

var translateUser string

var translateCmd = &cobra.Command{
	Use:   "translate <library.json | library-dir>",
	Short: "Print the package.json a library would be published with",
	Long: `Validate an H5P library.json and print the npm package.json the mirror
would generate for it. Nothing is written or published.

The npm scope defaults to NPM_USER; use --user to override it.`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVar(&translateUser, "user", "", "npm user the package is scoped under (default NPM_USER)")
	rootCmd.AddCommand(translateCmd)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	path := args[0]
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, manifest.FileName)
	}

	operator := translateUser
	if operator == "" {
		operator = config.Current().User
	}
	if operator == "" {
		return fmt.Errorf("no npm user: pass --user or set NPM_USER")
	}

	result, err := manifest.ValidateFile(path)
	if err != nil {
		return err
	}
	if !result.Valid {
		return result
	}

	lib, err := manifest.ParseFile(path)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(registry.NewPackageJSON(operator, lib), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling package.json: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
