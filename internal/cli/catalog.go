package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/h5p-mirror/h5pmirror/internal/branding"
	"github.com/h5p-mirror/h5pmirror/internal/config"
	"github.com/h5p-mirror/h5pmirror/internal/hub"
	"github.com/h5p-mirror/h5pmirror/internal/mirror"
	"github.com/h5p-mirror/h5pmirror/internal/storage"
	"github.com/spf13/cobra"
)

var catalogListJSON bool

func init() {
	catalogListCmd.Flags().BoolVar(&catalogListJSON, "json", false, "Output in JSON format")
	catalogCmd.AddCommand(catalogRefreshCmd)
	catalogCmd.AddCommand(catalogStatusCmd)
	catalogCmd.AddCommand(catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the H5P Hub content type catalog",
	Long: `Inspect the content type catalog the mirror works from.

The hub's content type list is cached in <work-dir>/hub-cache.json. A mirror
run always refreshes it first; these commands let you look at it without
installing or publishing anything.`,
}

var catalogRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch the content type list from the hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, session, err := catalogSession()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Refreshing catalog from %s...\n", s.Hub.ContentTypesURL)
		if err := session.RefreshCatalog(cmd.Context()); err != nil {
			return fmt.Errorf("refreshing catalog: %w", err)
		}

		types, err := session.ContentTypes(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Catalog updated: %d content types.\n", len(types))
		return nil
	},
}

var catalogStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog cache location and age",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := config.Current()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Hub:          %s\n", s.Hub.ContentTypesURL)
		fmt.Fprintf(out, "Cache file:   %s\n", s.CacheFile())

		cache, err := hub.LoadCache(s.CacheFile())
		if err != nil {
			return err
		}
		if cache == nil {
			fmt.Fprintln(out, "Status:       not fetched")
			fmt.Fprintf(out, "\nRun '%s catalog refresh' to fetch it.\n", branding.CLIName())
			return nil
		}

		age := time.Since(cache.UpdatedAt).Truncate(time.Minute)
		fmt.Fprintf(out, "Site UUID:    %s\n", cache.SiteUUID)
		fmt.Fprintf(out, "Last updated: %s (%s ago)\n", cache.UpdatedAt.Format(time.RFC3339), age)
		fmt.Fprintf(out, "Content types: %d\n", len(cache.ContentTypes))

		if hub.IsStale(cache, hub.DefaultCacheMaxAge) {
			fmt.Fprintf(out, "Status:       stale (run '%s catalog refresh')\n", branding.CLIName())
		} else {
			fmt.Fprintln(out, "Status:       up to date")
		}
		return nil
	},
}

// catalogRow is one content type for display.
type catalogRow struct {
	MachineName string `json:"machineName"`
	Version     string `json:"version"`
	Installed   bool   `json:"installed"`
	CanInstall  bool   `json:"canInstall"`
	Restricted  bool   `json:"restricted"`
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hub content types and their install state",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, session, err := catalogSession()
		if err != nil {
			return err
		}

		types, err := session.ContentTypes(cmd.Context())
		if err != nil {
			return err
		}
		entries, err := session.Catalog(cmd.Context())
		if err != nil {
			return err
		}

		rows := catalogRows(types, entries)
		if catalogListJSON {
			data, err := json.MarshalIndent(rows, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		}

		if len(rows) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "The hub lists no content types.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "CONTENT TYPE\tVERSION\tINSTALLED\tCAN INSTALL")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.MachineName, r.Version, yesNo(r.Installed), yesNo(r.CanInstall))
		}
		return w.Flush()
	},
}

// catalogRows joins the hub list with the evaluated catalog. Both are in hub
// order.
func catalogRows(types []hub.ContentType, entries []mirror.CatalogEntry) []catalogRow {
	rows := make([]catalogRow, 0, len(types))
	for i, ct := range types {
		row := catalogRow{
			MachineName: ct.ID,
			Version:     fmt.Sprintf("%d.%d.%d", ct.Version.Major, ct.Version.Minor, ct.Version.Patch),
			Restricted:  ct.Restricted,
		}
		if i < len(entries) && entries[i].MachineName == ct.ID {
			row.Installed = entries[i].Installed
			row.CanInstall = entries[i].CanInstall
		}
		rows = append(rows, row)
	}
	return rows
}

func catalogSession() (*config.Settings, *hub.Session, error) {
	s := config.Current()
	session, err := openSession(s, storage.New(s.LibrariesDir()))
	if err != nil {
		return nil, nil, err
	}
	return s, session, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
