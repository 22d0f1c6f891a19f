package main

import (
	"github.com/spf13/cobra"

	"github.com/heavydata/dms/version"
)

var showVersion bool

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaValidateCmd)
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "show the version and exit")
}

// rootCmd is the main command for the 'dms' binary.
var rootCmd = &cobra.Command{
	Use:   "dms",
	Short: "`dms`",
	Long:  "`dms` serves schema-driven document collections over http",
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			version.PrintVersion()
			return
		}
		// nolint:errcheck
		cmd.Usage()
	},
}
