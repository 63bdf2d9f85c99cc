package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/tabshell/internal/app"
	"github.com/MrSnakeDoc/tabshell/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the control API and render surface (default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	return app.New().Run()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

var importBookmarksCmd = &cobra.Command{
	Use:   "import-bookmarks <bookmarks.yaml>",
	Short: "Merge a Homepage bookmarks.yaml into the stored session",
	Long: `Merges a Homepage bookmarks.yaml into the persisted state. Each category
becomes a folder; URLs that are already bookmarked are skipped.
Run it while the server is stopped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := app.ImportBookmarks(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %d bookmarks in %d new folders, skipped %d\n",
			res.Added, res.Folders, res.Skipped)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the stored session snapshot as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.ExportState(cmd.Context(), cmd.OutOrStdout())
	},
}
