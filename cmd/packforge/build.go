// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/packforge/packforge/internal/config"
	"github.com/packforge/packforge/internal/issue"
	"github.com/packforge/packforge/internal/manifest"
	"github.com/packforge/packforge/internal/watch"
	"github.com/packforge/packforge/pkg/serialize"

	"github.com/spf13/cobra"
)

type buildFlags struct {
	read     readFlags
	clearDir bool
	watch    bool
	debounce time.Duration
}

func newBuildCommand(app *App) *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "build [manifest]",
		Short: "Build the pack described by a manifest",
		Long: `Build the pack described by a CUE manifest (default ./` + manifest.FileName + `).

Sources are read and merged in order with the manifest's strategy, overlay
sets are merged into their directories, and the result is written to the
manifest's output path. With --watch the pack is rebuilt whenever the
manifest or one of its inputs changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := manifest.FileName
			if len(args) == 1 {
				path = args[0]
			}
			return runBuild(cmd, app, path, flags)
		},
	}
	flags.read.register(cmd)
	cmd.Flags().BoolVar(&flags.clearDir, "clear", false, "empty a directory output before writing (default from config)")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "rebuild when the manifest or its inputs change")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", 500*time.Millisecond, "quiet period before a rebuild")
	return cmd
}

func runBuild(cmd *cobra.Command, app *App, path string, flags buildFlags) error {
	cfg, err := app.load(cmd.Context())
	if err != nil {
		return err
	}
	clearDir := outputClear(cmd, cfg.Output.Clear, flags.clearDir)
	build := func(ctx context.Context) error {
		return buildOnce(ctx, app, cfg, path, flags.read, clearDir)
	}

	err = build(cmd.Context())
	if !flags.watch {
		return err
	}
	if err != nil {
		app.logger.Error("initial build failed", "err", err)
	}
	return watchBuild(cmd.Context(), app, path, flags.debounce, build)
}

func buildOnce(ctx context.Context, app *App, cfg *config.Loaded, path string, flags readFlags, clearDir bool) error {
	m, err := manifest.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			app.renderIssue(issue.ManifestNotFoundId)
		} else {
			app.renderIssue(issue.ManifestInvalidId)
		}
		return issue.WrapWithContext(err, "load manifest", path)
	}

	readOpts, err := app.readOptions(cfg.Config, flags)
	if err != nil {
		return err
	}
	p, err := manifest.Build(ctx, m, manifest.BuildOptions{Read: readOpts, Logger: app.logger})
	if err != nil {
		return app.fail("build pack", path, err)
	}

	built, err := m.Write(p, clearDir, serialize.WriteOptions{Logger: app.logger})
	if err != nil {
		return app.fail("write pack", m.Output.Path, err)
	}
	if built != nil {
		app.reportArchive(m.Output.Path, built)
	} else {
		app.success("Wrote %s", m.Output.Path)
	}
	return nil
}

// watchBuild reruns build on every change until ctx is canceled. The set of
// watched inputs is taken from the manifest once, at startup.
func watchBuild(ctx context.Context, app *App, path string, debounce time.Duration, build func(context.Context) error) error {
	m, err := manifest.Load(path)
	if err != nil {
		return issue.WrapWithContext(err, "load manifest", path)
	}

	paths := append(m.Inputs(), path)
	w, err := watch.New(watch.Config{
		Paths:    paths,
		Exclude:  []string{m.Output.Path},
		Debounce: debounce,
		Logger:   app.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			app.logger.Info("change detected, rebuilding", "files", len(changed))
			return build(ctx)
		},
	})
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("watch inputs").
			WithResource(path).
			WithSuggestion("Check that every source listed in the manifest exists").
			Wrap(err).
			BuildError()
	}
	app.logger.Info("watching for changes", "paths", len(paths))
	return w.Run(ctx)
}
