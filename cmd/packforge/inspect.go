// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/packforge/packforge/pkg/pack"
	"github.com/packforge/packforge/pkg/resource"
	"github.com/packforge/packforge/pkg/serialize"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

const defaultReportWidth = 100

func newInspectCommand(app *App) *cobra.Command {
	var (
		in       readFlags
		markdown bool
		keys     bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <pack>",
		Short: "Summarize the content of a pack",
		Long: `Summarize the content of a pack: its descriptor, the number of
resources per category for the root and every overlay, and the entries
packforge keeps as plain files.`,
		Args: cobra.ExactArgs(1),
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

			report := packReport(args[0], result, keys)
			if markdown {
				_, err = fmt.Fprint(app.stdout, report)
				return err
			}
			return renderMarkdown(app, report)
		},
	}
	in.register(cmd)
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print the raw markdown report")
	cmd.Flags().BoolVar(&keys, "keys", false, "list every resource key")
	return cmd
}

func renderMarkdown(app *App, md string) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(defaultReportWidth),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	_, err = fmt.Fprint(app.stdout, out)
	return err
}

// packReport describes result as markdown.
func packReport(path string, result *serialize.Result, withKeys bool) string {
	p := result.Pack
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", path)

	sb.WriteString("| Property | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Layout format | %d |\n", result.Format)
	if d := p.Descriptor(); d != nil {
		fmt.Fprintf(&sb, "| Declared format | %d |\n", d.Format)
		if d.Supported != nil {
			fmt.Fprintf(&sb, "| Supported formats | %s |\n", d.Supported)
		}
		description := d.Description
		if len(d.DescriptionJSON) > 0 {
			description = "`" + string(d.DescriptionJSON) + "`"
		}
		fmt.Fprintf(&sb, "| Description | %s |\n", tableCell(description))
		if sections := d.SectionNames(); len(sections) > 0 {
			fmt.Fprintf(&sb, "| Sections | %s |\n", strings.Join(sections, ", "))
		}
	} else {
		sb.WriteString("| Descriptor | none |\n")
	}
	if icon, ok := p.Icon(); ok {
		fmt.Fprintf(&sb, "| Icon | %d bytes |\n", len(icon))
	} else {
		sb.WriteString("| Icon | none |\n")
	}

	overlays := p.Overlays()
	sb.WriteString("\n## Resources\n\n| Category | root |")
	for _, o := range overlays {
		fmt.Fprintf(&sb, " %s |", o.Directory())
	}
	sb.WriteString("\n|---|---:|")
	sb.WriteString(strings.Repeat("---:|", len(overlays)))
	sb.WriteString("\n")
	for _, kind := range resource.Kinds() {
		if p.Len(kind) == 0 && !anyOverlayHas(overlays, kind) {
			continue
		}
		fmt.Fprintf(&sb, "| %s | %d |", kind, p.Len(kind))
		for _, o := range overlays {
			fmt.Fprintf(&sb, " %d |", o.Len(kind))
		}
		sb.WriteString("\n")
	}

	if len(overlays) > 0 {
		sb.WriteString("\n## Overlays\n\n")
		for _, o := range overlays {
			fmt.Fprintf(&sb, "- `%s`: formats %s, %d resources, %d files\n",
				o.Directory(), o.Formats(), o.Size(), len(o.Files()))
		}
	}

	files := containerFiles(p)
	if len(files) > 0 {
		sb.WriteString("\n## Unrecognized files\n\n")
		for _, f := range files {
			fmt.Fprintf(&sb, "- `%s`\n", f)
		}
	}

	if len(result.Skipped) > 0 {
		sb.WriteString("\n## Skipped entries\n\n")
		for _, s := range result.Skipped {
			fmt.Fprintf(&sb, "- %s\n", tableCell(s.Error()))
		}
	}

	if withKeys {
		sb.WriteString("\n## Keys\n")
		writeKeys(&sb, "root", p.Root())
		for _, o := range overlays {
			writeKeys(&sb, o.Directory(), o.Container)
		}
	}
	return sb.String()
}

func writeKeys(sb *strings.Builder, name string, c *pack.Container) {
	if c.Empty() {
		return
	}
	fmt.Fprintf(sb, "\n### %s\n", name)
	for _, kind := range resource.Kinds() {
		keys := c.Keys(kind)
		if len(keys) == 0 {
			continue
		}
		fmt.Fprintf(sb, "\n**%s**\n\n", kind)
		for _, k := range keys {
			fmt.Fprintf(sb, "- `%s`\n", k)
		}
	}
}

// containerFiles lists the plain files of the root and every overlay with
// their serialized paths.
func containerFiles(p *pack.Pack) []string {
	files := p.Files()
	for _, o := range p.Overlays() {
		for _, f := range o.Files() {
			files = append(files, o.Directory()+"/"+f)
		}
	}
	return files
}

func anyOverlayHas(overlays []*pack.Overlay, kind resource.Kind) bool {
	for _, o := range overlays {
		if o.Len(kind) > 0 {
			return true
		}
	}
	return false
}

func tableCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
