// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"io/fs"
	"slices"
	"strings"

	"github.com/packforge/packforge/pkg/merge"
	"github.com/packforge/packforge/pkg/serialize"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

// Id identifies an Issue.
type Id int

const (
	ManifestNotFoundId Id = iota + 1
	ManifestInvalidId
	PackNotFoundId
	MergeConflictId
	DecodeFailedId
	PathCollisionId
	ConfigLoadFailedId
)

type (
	// MarkdownMsg is the Markdown body of an issue.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a Markdown guide for one class of failure.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

func (i *Issue) Id() Id { return i.id }

func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

func (i *Issue) DocLinks() []HttpLink { return slices.Clone(i.docLinks) }

// Render renders the guide for the terminal with the glamour style at
// stylePath, or the standard style name it holds.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	formatDocs = HttpLink("https://minecraft.wiki/w/Pack_format")

	issues = map[Id]*Issue{
		ManifestNotFoundId: {
			id: ManifestNotFoundId,
			mdMsg: `
# No build manifest found

packforge looked for a ` + "`pack.cue`" + ` file in the current directory.

## Things you can try
- Pass the manifest path explicitly:
~~~
$ packforge build path/to/pack.cue
~~~
- Start from a minimal manifest:
~~~cue
output: {path: "dist/pack.zip", format: 46}
sources: [{path: "src"}]
~~~`,
		},
		ManifestInvalidId: {
			id: ManifestInvalidId,
			mdMsg: `
# The build manifest is invalid

The error above names the offending field as a path such as ` + "`sources[1].path`" + `.

## Things you can try
- Check that every source and overlay has a non-empty ` + "`path`" + `
- Overlay directories must match ` + "`[a-z0-9_-]+`" + ` and may not be ` + "`assets`" + `
- Format ranges need ` + "`min <= max`",
			docLinks: []HttpLink{formatDocs},
		},
		PackNotFoundId: {
			id: PackNotFoundId,
			mdMsg: `
# Pack not found

A pack is either a directory holding ` + "`pack.mcmeta`" + ` and ` + "`assets/`" + `, or a zip archive of one.

## Things you can try
- Check the path for typos
- Relative paths in a manifest resolve against the manifest's directory`,
		},
		MergeConflictId: {
			id: MergeConflictId,
			mdMsg: `
# The packs conflict

With ` + "`merge-fail-on-error`" + ` any resource defined differently by two packs stops the merge.

## Things you can try
- Keep the first definition of each conflicting resource:
~~~
$ packforge merge --strategy merge-keep-first-on-error base.zip other.zip -o out.zip
~~~
- Let later packs win with ` + "`--strategy override`" + `
- Remove the duplicate resources listed above from one of the packs`,
		},
		DecodeFailedId: {
			id: DecodeFailedId,
			mdMsg: `
# A pack entry could not be decoded

The entry path and its category are shown above.

## Things you can try
- Accept comments and trailing commas with ` + "`--lenient`" + `
- Keep going and preserve broken entries verbatim with ` + "`--error-policy skip`",
		},
		PathCollisionId: {
			id: PathCollisionId,
			mdMsg: `
# Two entries map to the same file

A resource and an unrecognized file, or two resources at the chosen format, share an output path.

## Things you can try
- Remove the stray file from the source pack
- Target another format with ` + "`--format`",
			docLinks: []HttpLink{formatDocs},
		},
		ConfigLoadFailedId: {
			id: ConfigLoadFailedId,
			mdMsg: `
# Failed to load configuration

## Things you can try
- Show the effective configuration:
~~~
$ packforge config show
~~~
- Write a fresh default file with ` + "`packforge config init --force`",
		},
	}
)

// Values returns every issue in Id order.
func Values() []*Issue {
	ids := maps.Keys(issues)
	slices.Sort(ids)
	out := make([]*Issue, len(ids))
	for i, id := range ids {
		out[i] = issues[id]
	}
	return out
}

// Get returns the issue with the given Id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}

// ForError returns the guide matching err, if any.
func ForError(err error) (*Issue, bool) {
	var id Id
	switch {
	case errors.Is(err, merge.ErrConflict):
		id = MergeConflictId
	case errors.Is(err, serialize.ErrPathCollision):
		id = PathCollisionId
	case errors.Is(err, serialize.ErrCodec):
		id = DecodeFailedId
	case errors.Is(err, fs.ErrNotExist):
		id = PackNotFoundId
	default:
		return nil, false
	}
	return issues[id], true
}
