/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tristendillon/tsmock/core/logger"
	"github.com/tristendillon/tsmock/core/shared"
	"github.com/tristendillon/tsmock/core/template_engine"
)

var componentCmd = &cobra.Command{
	Use:   "component <dir> <Name>",
	Short: "Scaffold a React component folder",
	Long: `Creates <dir>/<kebab-name>/ with index.tsx, view.tsx and
styles.module.less. Fails when the folder already exists.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("component called with %v", args)
		name := shared.ToTitle(args[1])
		dir := filepath.Join(args[0], shared.ToKebabCase(name))

		fs := afero.NewOsFs()
		if exists, _ := afero.Exists(fs, dir); exists {
			return errors.WithHint(errors.Newf("%s already exists", dir), "pick another name or remove the folder")
		}

		ref := template_engine.TEMPLATES.COMPONENT.Ref
		engine := template_engine.NewTemplateEngine(fs)
		if err := engine.ValidateTemplate(ref); err != nil {
			return err
		}
		if err := engine.GenerateFolder(ref, dir, map[string]string{"Name": name}); err != nil {
			return err
		}

		files, err := engine.ListTemplates(ref)
		if err != nil {
			return err
		}
		pterm.Success.Printf("Created component %s in %s\n", name, dir)
		for _, f := range files {
			logger.Debugw("Generated", "file", filepath.Join(dir, strings.TrimSuffix(filepath.Base(f), ".tmpl")))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(componentCmd)
}
