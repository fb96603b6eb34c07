/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tristendillon/tsmock/core/logger"
)

var testCmd = &cobra.Command{
	Use:   "test <file>...",
	Short: "Create or update the test scaffold of a module",
	Long: `Creates <name>.test.ts next to each module with one mock directive per
aliased dependency, or adds the directives an existing test is missing. A file
may name either the module or its test.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("test called with %v", args)
		g, _, err := newGenerator()
		if err != nil {
			return err
		}
		return runEach(args, g.SyncTest)
	},
}

func init() {
	rootCmd.AddCommand(testCmd)
}
