/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tristendillon/tsmock/core/logger"
)

var rootCmd = &cobra.Command{
	Use:   "tsmock",
	Short: "Keeps TypeScript mocks and test scaffolds in sync with their modules.",
	Long: `tsmock generates and maintains the .mock and .test companions of the
modules in a TypeScript monorepo domain. Existing companions are only ever
extended: missing stand-ins and mock directives are added, nothing is removed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)
		if logfile == "" {
			return nil
		}
		closeFn, err := logger.SetLogFile(logfile)
		if err != nil {
			return err
		}
		closeLog = closeFn
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
		if closeLog != nil {
			_ = closeLog()
		}
	},
}

var logfile string
var verbose bool
var configFile string
var closeLog func() error

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default is tsmock.yaml in the working directory or project root)")
}
