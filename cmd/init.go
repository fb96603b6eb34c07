/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tristendillon/tsmock/core/config"
	"github.com/tristendillon/tsmock/core/logger"
)

var (
	force bool
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a tsmock.yaml with the default settings",
	Long:  `Writes tsmock.yaml with every key populated to dir, or the working directory.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("init called")
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		return writeDefaultConfig(afero.NewOsFs(), dir, force)
	},
}

func writeDefaultConfig(fs afero.Fs, dir string, overwrite bool) error {
	path := filepath.Join(dir, config.FileName+"."+config.FileType)
	if exists, _ := afero.Exists(fs, path); exists {
		if !overwrite {
			return errors.WithHint(errors.Newf("%s already exists", path), "use --force to overwrite")
		}
		logger.Debug("%s already exists. Overwriting.", path)
	}

	content, err := config.Default().Marshal()
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	if err := afero.WriteFile(fs, path, content, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	pterm.Success.Printf("Wrote %s\n", path)
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "Force overwrite existing files")
}
