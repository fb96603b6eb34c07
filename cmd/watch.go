/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tristendillon/tsmock/core/config"
	"github.com/tristendillon/tsmock/core/logger"
	"github.com/tristendillon/tsmock/core/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep existing companions in sync while you edit",
	Long: `Watches the domain root and re-synchronizes the mock and test companions
that already exist for a module whenever its content changes. New companion
files are never created in watch mode.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("watch called")
		g, cfg, err := newGenerator()
		if err != nil {
			return err
		}

		wd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(err, "cannot determine working dir")
		}
		root, ok := config.FindProjectRoot(afero.NewOsFs(), wd, cfg.Domain.Root)
		if !ok {
			return errors.Newf("no %s directory above %s", cfg.Domain.Root, wd)
		}
		domainRoot := filepath.Join(root, cfg.Domain.Root)

		fw, err := watcher.NewFileWatcher(domainRoot, cfg.Watch.Exclude, cfg.Domain.Extensions,
			time.Duration(cfg.Watch.DebounceMs)*time.Millisecond)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fw.FileWatcher.AddOnStartFunc(func() error {
			logger.Info("Watching %s for changes...", domainRoot)
			return nil
		})
		fw.FileWatcher.AddOnChangeFunc(func(path string) error {
			logger.Debug("Change settled: %s", path)
			results := g.SyncExisting(ctx, path)
			for _, r := range results {
				logResult(r)
			}
			return report(results)
		})
		fw.FileWatcher.AddOnCloseFunc(func() error {
			logger.Info("Stopped watching")
			return nil
		})

		defer fw.Close()
		return fw.Watch(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
