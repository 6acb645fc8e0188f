// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// readFlags are the reader overrides shared by commands that read packs.
type readFlags struct {
	policy  string
	lenient bool
	format  int
}

func (f *readFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.policy, "error-policy", "", "what to do with undecodable entries: abort or skip (default from config)")
	cmd.Flags().BoolVar(&f.lenient, "lenient", false, "accept comments and trailing commas in JSON entries")
	cmd.Flags().IntVar(&f.format, "read-format", 0, "folder layout of the input packs (default: the format they declare)")
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "packforge",
		Short: "Assemble, merge and convert resource packs",
		Long: TitleStyle.Render("packforge") + SubtitleStyle.Render(" - resource pack assembly") + `

packforge reads resource packs from directories or zip archives, merges
them with a chosen conflict strategy, and writes them back for any pack
format with byte-identical output for identical content.

` + SubtitleStyle.Render("Examples:") + `
  packforge build                       Build the pack described by ./pack.cue
  packforge merge base.zip extra -o out.zip
  packforge convert old.zip new.zip --format 46
  packforge inspect pack.zip            Summarize a pack
  packforge config show                 Show the effective configuration`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/packforge/config.cue)")

	root.AddCommand(
		newBuildCommand(app),
		newMergeCommand(app),
		newConvertCommand(app),
		newInspectCommand(app),
		newConfigCommand(app),
	)
	return root
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the code of the failure, if any.
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(exitFailure)
	}
}
