// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/packforge/packforge/internal/config"
	"github.com/packforge/packforge/internal/issue"
	"github.com/packforge/packforge/pkg/merge"
	"github.com/packforge/packforge/pkg/pack"
	"github.com/packforge/packforge/pkg/serialize"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type (
	// App wires the CLI services. Every command handler receives the App and
	// writes through its streams, so tests can capture output.
	App struct {
		Config config.Provider
		stdout io.Writer
		stderr io.Writer

		configPath string
		verbose    bool
		settings   *config.Loaded
		logger     *log.Logger
	}

	// Dependencies are the injection points of NewApp. Nil fields get
	// production defaults.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewApp creates an App.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	return &App{Config: deps.Config, stdout: deps.Stdout, stderr: deps.Stderr}
}

// load reads the configuration once per invocation and builds the logger.
func (a *App) load(ctx context.Context) (*config.Loaded, error) {
	if a.settings != nil {
		return a.settings, nil
	}
	loaded, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
	if err != nil {
		a.renderIssue(issue.ConfigLoadFailedId)
		return nil, err
	}

	level, err := loaded.LogLevel()
	if err != nil {
		return nil, err
	}
	if a.verbose {
		level = log.DebugLevel
	}
	a.logger = log.NewWithOptions(a.stderr, log.Options{Level: level, Prefix: "packforge"})
	a.settings = loaded
	return loaded, nil
}

// readOptions returns the configured reader options, with the flags of cmd
// applied on top.
func (a *App) readOptions(cfg *config.Config, flags readFlags) (serialize.ReadOptions, error) {
	opts, err := cfg.ReadOptions(a.logger)
	if err != nil {
		return opts, err
	}
	if flags.policy != "" {
		if opts.Policy, err = serialize.ParseErrorPolicy(flags.policy); err != nil {
			return opts, err
		}
	}
	if flags.lenient {
		opts.Lenient = true
	}
	opts.Format = flags.format
	return opts, nil
}

// writeOutput writes p to path. A ".zip" path gets an archive and a path
// ending in a separator or naming a directory gets a directory; any other
// path follows output.archive, which appends ".zip" to it.
func (a *App) writeOutput(p *pack.Pack, path string, format int, clearDir bool) error {
	archive, path := outputTarget(path, a.settings.Output.Archive)
	opts := serialize.WriteOptions{Logger: a.logger}
	if !archive {
		if err := serialize.WriteDir(p, path, format, clearDir, opts); err != nil {
			return a.fail("write pack", path, err)
		}
		a.success("Wrote %s", path)
		return nil
	}

	built, err := serialize.WriteArchive(p, path, format, opts)
	if err != nil {
		return a.fail("write pack", path, err)
	}
	a.reportArchive(path, built)
	return nil
}

func outputTarget(path string, archive bool) (bool, string) {
	switch {
	case strings.EqualFold(filepath.Ext(path), ".zip"):
		return true, path
	case strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)):
		return false, path
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return false, path
	}
	if archive {
		return true, path + ".zip"
	}
	return false, path
}

func (a *App) reportArchive(path string, built *serialize.Built) {
	a.success("Wrote %s (%d bytes)", path, len(built.Data))
	fmt.Fprintf(a.stdout, "  %s %s\n", KeyStyle.Render("sha1:  "), built.SHA1)
	fmt.Fprintf(a.stdout, "  %s %s\n", KeyStyle.Render("digest:"), built.Digest)
}

func (a *App) success(format string, args ...any) {
	fmt.Fprintf(a.stdout, "%s %s\n", SuccessStyle.Render("✓"), fmt.Sprintf(format, args...))
}

// fail wraps err with context and prints the matching guide, if any.
// Merge conflicts are listed one per line and exit with exitConflict.
func (a *App) fail(operation, resource string, err error) error {
	var conflicts *merge.ConflictError
	if errors.As(err, &conflicts) {
		fmt.Fprintln(a.stderr, ErrorStyle.Render(fmt.Sprintf("%d conflict(s):", len(conflicts.Conflicts))))
		for _, c := range conflicts.Conflicts {
			fmt.Fprintf(a.stderr, "  • %s\n", c)
		}
	}
	if i, ok := issue.ForError(err); ok {
		a.renderIssue(i.Id())
	}

	wrapped := issue.WrapWithContext(err, operation, resource)
	if conflicts != nil {
		return &ExitError{Code: exitConflict, Err: wrapped}
	}
	return wrapped
}

func (a *App) renderIssue(id issue.Id) {
	i := issue.Get(id)
	if i == nil {
		return
	}
	rendered, err := i.Render("dark")
	if err != nil {
		return
	}
	fmt.Fprint(a.stderr, rendered)
}

// outputClear returns the --clear flag when it was given, else the
// configured value.
func outputClear(cmd *cobra.Command, configured, flag bool) bool {
	if cmd.Flags().Changed("clear") {
		return flag
	}
	return configured
}
