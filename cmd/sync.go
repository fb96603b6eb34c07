/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tristendillon/tsmock/core/config"
	"github.com/tristendillon/tsmock/core/logger"
	"github.com/tristendillon/tsmock/core/models"
)

var (
	syncAll      bool
	syncExisting bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [file...]",
	Short: "Synchronize both companions of modules",
	Long: `Runs mock and test synchronization for each given module, or for every
module under the domain root with --all, and prints a summary table. With
--all, modules that export nothing and import no mocked dependencies get no
test scaffold; --existing limits the run to companions already on disk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("sync called with %v (all: %t)", args, syncAll)
		if !syncAll && len(args) == 0 {
			return errors.New("pass one or more files, or --all")
		}

		g, cfg, err := newGenerator()
		if err != nil {
			return err
		}

		ctx := context.Background()
		var results []models.Result
		if syncAll {
			wd, err := os.Getwd()
			if err != nil {
				return errors.Wrap(err, "cannot determine working dir")
			}
			root, ok := config.FindProjectRoot(afero.NewOsFs(), wd, cfg.Domain.Root)
			if !ok {
				return errors.WithHintf(
					errors.Newf("no %s directory above %s", cfg.Domain.Root, wd),
					"run tsmock from inside the monorepo",
				)
			}
			if results, err = g.SyncAll(ctx, root, syncExisting); err != nil {
				return err
			}
		} else {
			for _, p := range args {
				results = append(results, g.Sync(ctx, p)...)
			}
		}

		if err := renderSummary(results); err != nil {
			logger.Warn("Could not render summary: %v", err)
		}
		return report(results)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&syncAll, "all", false, "Synchronize every module under the domain root")
	syncCmd.Flags().BoolVar(&syncExisting, "existing", false, "With --all, only update companions that already exist")
}
