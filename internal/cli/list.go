package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/h5p-mirror/h5pmirror/internal/config"
	"github.com/h5p-mirror/h5pmirror/internal/registry"
	"github.com/h5p-mirror/h5pmirror/internal/storage"
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List libraries in local storage",
	Long: `List the libraries installed in <work-dir>/libraries together with the npm
package each one is published as.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// listEntry represents an installed library for display.
type listEntry struct {
	Library string `json:"library"`
	Version string `json:"version"`
	Package string `json:"package,omitempty"`
	Path    string `json:"path"`
}

func runList(cmd *cobra.Command, args []string) error {
	s := config.Current()
	store := storage.New(s.LibrariesDir())

	names, err := store.List()
	if err != nil {
		return fmt.Errorf("listing libraries: %w", err)
	}
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No libraries installed yet.")
		return nil
	}

	entries := make([]listEntry, 0, len(names))
	for _, n := range names {
		e := listEntry{
			Library: n.UberName(),
			Version: n.Version().String(),
			Path:    store.LibraryDir(n),
		}
		if s.User != "" {
			e.Package = registry.PackageName(s.User, n.MachineName)
		}
		entries = append(entries, e)
	}

	if listJSON {
		return printListJSON(cmd, entries)
	}
	return printListTable(cmd, entries)
}

func printListTable(cmd *cobra.Command, entries []listEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "LIBRARY\tVERSION\tPACKAGE")
	for _, e := range entries {
		pkg := e.Package
		if pkg == "" {
			pkg = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Library, e.Version, pkg)
	}
	return w.Flush()
}

func printListJSON(cmd *cobra.Command, entries []listEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
