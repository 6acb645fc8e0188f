// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/packforge/packforge/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the packforge configuration",
		Long: `Manage the packforge configuration.

Settings are resolved from the built-in defaults, then the config file
(` + config.ConfigFileName + ` in the user config directory, or the file given with
--config), then PACKFORGE_* environment variables such as
PACKFORGE_READER_ERROR_POLICY.`,
	}
	cmd.AddCommand(
		newConfigShowCommand(app),
		newConfigInitCommand(app),
		newConfigPathCommand(app),
	)
	return cmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	var (
		format   string
		defaults bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultConfig()
			source := "built-in defaults"
			if !defaults {
				loaded, err := app.load(cmd.Context())
				if err != nil {
					return err
				}
				cfg = loaded.Config
				if loaded.Source != "" {
					source = loaded.Source
				}
			}

			var out string
			switch format {
			case "cue":
				out = config.GenerateCUE(cfg)
			case "toml":
				var err error
				if out, err = config.GenerateTOML(cfg); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown output format %q (want cue or toml)", format)
			}

			fmt.Fprintln(app.stderr, SubtitleStyle.Render("# source: "+source))
			_, err := fmt.Fprint(app.stdout, out)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "cue", "output format: cue or toml")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "print the built-in defaults instead")
	return cmd
}

func newConfigInitCommand(app *App) *cobra.Command {
	var (
		dir   string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file holding the defaults",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := config.CreateDefaultConfig(dir, force)
			if err != nil {
				return err
			}
			app.success("Config file at %s", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory to write "+config.ConfigFileName+" to (default is the user config directory)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigPathCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config directory",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			dir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(app.stdout, dir)
			return err
		},
	}
}
