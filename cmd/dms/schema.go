package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/heavydata/dms/schema"
)

// schemaCmd groups schema tooling subcommands.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "`schema` offers schema tooling",
	Long:  "`schema` offers schema tooling",
	Run: func(cmd *cobra.Command, args []string) {
		// nolint:errcheck
		cmd.Usage()
	},
}

// schemaValidateCmd parses and validates a schema document without a server.
var schemaValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "`validate` checks a schema document",
	Long:  "`validate` parses a schema document and reports the first rule violation",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			// nolint:errcheck
			cmd.Usage()
			os.Exit(1)
		}

		p, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading %s: %v\n", args[0], err)
			os.Exit(1)
		}

		s, err := schema.Parse(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
			os.Exit(1)
		}

		collections := make([]string, 0, len(s))
		for name := range s {
			collections = append(collections, name)
		}
		sort.Strings(collections)

		fmt.Printf("%s: ok (%d collections)\n", args[0], len(collections))
		for _, name := range collections {
			fmt.Printf("  %s (%d fields)\n", name, len(s[name]))
		}
	},
}
