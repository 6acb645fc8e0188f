// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/packforge/packforge/pkg/merge"
	"github.com/packforge/packforge/pkg/pack"
	"github.com/packforge/packforge/pkg/serialize"

	"github.com/spf13/cobra"
)

// outputFlags are shared by commands that write a pack.
type outputFlags struct {
	output   string
	format   int
	clearDir bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output path; a .zip path writes an archive, anything else a directory")
	cmd.Flags().IntVar(&f.format, "format", 0, "pack format to write, -1 for the latest layout (default from config)")
	cmd.Flags().BoolVar(&f.clearDir, "clear", false, "empty a directory output before writing (default from config)")
}

// targetFormat returns --format when given, else the configured format.
func (f *outputFlags) targetFormat(cmd *cobra.Command, configured int) int {
	if cmd.Flags().Changed("format") {
		return f.format
	}
	return configured
}

func newMergeCommand(app *App) *cobra.Command {
	var (
		in       readFlags
		out      outputFlags
		strategy string
	)
	cmd := &cobra.Command{
		Use:   "merge <base> <other>...",
		Short: "Merge packs into one",
		Long: `Merge packs into one. Later packs are merged into the result of the
earlier ones, so with the override strategy the last pack wins.

Strategies:
  override                   keys present in both packs take the later value
  merge-fail-on-error        combine fonts, models, atlases, languages and sound
                             registries; fail on any other differing key
  merge-keep-first-on-error  combine like above; keep the earlier value otherwise`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, app, args, in, out, strategy)
		},
	}
	in.register(cmd)
	out.register(cmd)
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "merge strategy: "+strings.Join(merge.Strategies(), ", ")+" (default from config)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runMerge(cmd *cobra.Command, app *App, inputs []string, in readFlags, out outputFlags, strategyName string) error {
	cfg, err := app.load(cmd.Context())
	if err != nil {
		return err
	}
	strategy, err := cfg.MergeStrategy()
	if err != nil {
		return err
	}
	if strategyName != "" {
		if strategy, err = merge.ParseStrategy(strategyName); err != nil {
			return err
		}
	}
	readOpts, err := app.readOptions(cfg.Config, in)
	if err != nil {
		return err
	}

	var result *pack.Pack
	for _, path := range inputs {
		read, err := serialize.ReadPath(cmd.Context(), path, readOpts)
		if err != nil {
			return app.fail("read pack", path, err)
		}
		if result == nil {
			result = read.Pack
			continue
		}
		if result, err = merge.Packs(result, read.Pack, strategy, merge.WithLogger(app.logger)); err != nil {
			return app.fail(fmt.Sprintf("merge with %s", strategy), path, err)
		}
	}

	return app.writeOutput(result, out.output, out.targetFormat(cmd, cfg.TargetFormat), outputClear(cmd, cfg.Output.Clear, out.clearDir))
}
