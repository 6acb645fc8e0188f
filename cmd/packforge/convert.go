// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/packforge/packforge/pkg/serialize"

	"github.com/spf13/cobra"
)

func newConvertCommand(app *App) *cobra.Command {
	var (
		in  readFlags
		out outputFlags
	)
	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Rewrite a pack for another format or container",
		Long: `Rewrite a pack for another pack format, or between a directory and a
zip archive. Resources move to the folders of the target format; entries
packforge does not recognize are copied unchanged.`,
		Example: `  packforge convert old.zip new.zip --format 46
  packforge convert pack.zip unpacked/ --clear`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.load(cmd.Context())
			if err != nil {
				return err
			}
			readOpts, err := app.readOptions(cfg.Config, in)
			if err != nil {
				return err
			}
			result, err := serialize.ReadPath(cmd.Context(), args[0], readOpts)
			if err != nil {
				return app.fail("read pack", args[0], err)
			}
			if n := len(result.Skipped); n > 0 {
				app.logger.Warn("entries kept verbatim after decode errors", "count", n)
			}
			return app.writeOutput(result.Pack, args[1], out.targetFormat(cmd, cfg.TargetFormat), outputClear(cmd, cfg.Output.Clear, out.clearDir))
		},
	}
	in.register(cmd)
	cmd.Flags().IntVar(&out.format, "format", 0, "pack format to write, -1 for the latest layout (default from config)")
	cmd.Flags().BoolVar(&out.clearDir, "clear", false, "empty a directory output before writing (default from config)")
	return cmd
}
