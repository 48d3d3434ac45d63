// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	PackageNotFoundId Id = iota + 1
	MalformedIdentifierId
	EmptySearchPathId
	ConfigLoadFailedId
	BuildFailedId
	MissingArtifactId
	DependencyNotFoundId
	InvalidManifestId
	ShellNotFoundId
	PermissionDeniedId
	NothingInstalledId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // kiln documentation for the issue
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	packageNotFoundIssue = &Issue{
		id: PackageNotFoundId,
		mdMsg: `
# Package not found!

kiln looked for the package sources in the workspace but found nothing.

## Search locations (in order):
1. ` + "`<workspace>/src/<path>-<version>`" + `
2. ` + "`<workspace>/src/<path>`" + `

## Things you can try:
- Check the package path and version you passed
- Make sure the sources were fetched into the right workspace:
~~~
$ echo $KILN_PATH
~~~
- List what the workspace already has installed:
~~~
$ kiln list
~~~`,
	}

	malformedIdentifierIssue = &Issue{
		id: MalformedIdentifierId,
		mdMsg: `
# Malformed package identifier!

Package identifiers are relative paths, optionally followed by a version:

~~~
github.com/someone/tool
github.com/someone/tool#0.3
~~~

## Things you can try:
- Remove any leading '/' or trailing '/'
- Remove '..' segments
- Use dotted numeric versions such as ` + "`1.2`" + ` or tags such as ` + "`v1.2`",
	}

	emptySearchPathIssue = &Issue{
		id: EmptySearchPathId,
		mdMsg: `
# No workspace configured!

kiln needs at least one workspace to build into, and the search path is empty.

## Things you can try:
- Unset KILN_PATH to fall back to the configured search path
- Or set it to one or more directories:
~~~
$ export KILN_PATH=$HOME/kiln
~~~
- Or add entries to ` + "`search_path`" + ` in your config file:
~~~
$ kiln config init
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your kiln configuration file could not be loaded.

## Things you can try:
- Check the CUE syntax of your config file
- Compare it with the defaults:
~~~
$ kiln config show
~~~
- Remove the file and regenerate it:
~~~
$ kiln config init
~~~`,
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# Build failed!

The compile step exited with an error. Its output is shown above.

## Things you can try:
- Re-run with verbose output to see every compiler invocation:
~~~
$ kiln --verbose build <package>
~~~
- Check ` + "`compiler.command`" + ` in your config file
- Try the other compiler runtime (` + "`virtual`" + ` or ` + "`native`" + `)`,
	}

	missingArtifactIssue = &Issue{
		id: MissingArtifactId,
		mdMsg: `
# Build produced no artifact!

The compile step succeeded but did not write the file kiln asked for.
The run was stopped.

## Things you can try:
- Make sure your compile command writes to ` + "`$KILN_OUT`" + `
- Libraries must be written with the name in ` + "`$KILN_LIB_FILE`",
	}

	dependencyNotFoundIssue = &Issue{
		id: DependencyNotFoundId,
		mdMsg: `
# Dependency not found!

A package listed in ` + "`dependencies`" + ` of kiln.toml has no built or installed library
in any workspace of the search path. Dependencies are never built implicitly.

## Things you can try:
- Install the dependency first:
~~~
$ kiln install <dependency>
~~~
- Check the dependency's version in kiln.toml`,
	}

	invalidManifestIssue = &Issue{
		id: InvalidManifestId,
		mdMsg: `
# Invalid kiln.toml!

The package manifest could not be read, or the package has no crates.
Without a manifest, crates are found by name at the package source root:
` + "`lib.*`, `main.*`, `test.*`" + ` and ` + "`bench.*`" + `.

## Example manifest:
~~~toml
dependencies = ["github.com/someone/dep#0.2"]

[[crate]]
kind = "lib"
source = "src/lib.rs"
~~~`,
	}

	shellNotFoundIssue = &Issue{
		id: ShellNotFoundId,
		mdMsg: `
# Shell not found!

The native compiler runtime runs the compile command with the host ` + "`sh`" + `,
which could not be found.

## Things you can try:
- Switch to the embedded shell in your config file:
~~~cue
compiler: runtime: "virtual"
~~~
- Install a POSIX shell and make sure it is on PATH`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

kiln could not create or write a workspace or cache directory.

## Things you can try:
- Check the ownership of the workspace and of ` + "`$KILN_CACHE_DIR`" + `
- Workspace directories are created owner-only (0700)`,
	}

	nothingInstalledIssue = &Issue{
		id: NothingInstalledId,
		mdMsg: `
# Nothing to uninstall

Neither an executable nor a library of this package is installed in the workspace.

## Things you can try:
- List installed packages:
~~~
$ kiln list
~~~`,
	}

	issues = map[Id]*Issue{
		packageNotFoundIssue.Id():     packageNotFoundIssue,
		malformedIdentifierIssue.Id(): malformedIdentifierIssue,
		emptySearchPathIssue.Id():     emptySearchPathIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		buildFailedIssue.Id():         buildFailedIssue,
		missingArtifactIssue.Id():     missingArtifactIssue,
		dependencyNotFoundIssue.Id():  dependencyNotFoundIssue,
		invalidManifestIssue.Id():     invalidManifestIssue,
		shellNotFoundIssue.Id():       shellNotFoundIssue,
		permissionDeniedIssue.Id():    permissionDeniedIssue,
		nothingInstalledIssue.Id():    nothingInstalledIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	values := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		values = append(values, i)
	}
	slices.SortFunc(values, func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
