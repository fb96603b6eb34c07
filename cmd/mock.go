/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tristendillon/tsmock/core/logger"
)

var mockCmd = &cobra.Command{
	Use:   "mock <file>...",
	Short: "Create or update the mock companion of a module",
	Long: `Creates <name>.mock.ts next to each module, or adds the stand-ins an
existing mock is missing. A file may name either the module or its mock.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("mock called with %v", args)
		g, _, err := newGenerator()
		if err != nil {
			return err
		}
		return runEach(args, g.SyncMock)
	},
}

func init() {
	rootCmd.AddCommand(mockCmd)
}
