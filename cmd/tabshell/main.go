package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tabshell",
	Short: "Tab and session state core of a mobile browser shell",
	Long: `tabshell keeps the tabs, bookmarks, history and settings of a browser
shell, persists them, and drives render surfaces through a local control API.

Configuration is read from TABSHELL_* environment variables.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	rootCmd.AddCommand(serveCmd, versionCmd, importBookmarksCmd, exportCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("❌ tabshell failed: %v", err)
	}
}
