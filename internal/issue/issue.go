// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

const (
	ConfigLoadFailedId Id = iota + 1
	LockfileInvalidId
	UnsafeArchiveId
	MetadataFailedId
	UnsupportedPackageId
	JobDecodeFailedId
	BuildScriptFailedId
	CompileFailedId
	ToolchainFailedId
	DependencyCycleId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is Markdown text rendered with glamour.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a troubleshooting note shown for one failure class.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render returns the note rendered for a terminal with the given glamour
// style ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 {
		var sb strings.Builder
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
		md += sb.String()
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Could not load the configuration

The config file is not valid CUE or does not match the expected schema.

## Things you can try:
- Print a valid file with the defaults and start from it:
~~~
$ cargoshim config dump > cargoshim.cue
~~~
- Check which file is being read:
~~~
$ cargoshim config path
~~~
- Environment overrides use the ` + "`CARGOSHIM_`" + ` prefix, e.g. ` + "`CARGOSHIM_UI_COLOR=never`" + `.`,
	}

	lockfileInvalidIssue = &Issue{
		id: LockfileInvalidId,
		mdMsg: `
# Cargo.lock could not be vendored

Every registry package in the lockfile needs a ` + "`source`" + ` of the form
` + "`registry+<url>`" + ` or ` + "`sparse+<url>`" + ` and a hex ` + "`checksum`" + `.

## Things you can try:
- Regenerate the lockfile with a recent cargo: ` + "`cargo generate-lockfile`" + `
- Replace git dependencies that carry checksums with registry releases`,
		docLinks: []HttpLink{"https://doc.rust-lang.org/cargo/guide/cargo-toml-vs-cargo-lock.html"},
	}

	unsafeArchiveIssue = &Issue{
		id: UnsafeArchiveId,
		mdMsg: `
# Refused to unpack a crate archive

An entry in the archive points outside the crate directory (it contains ` + "`..`" + `),
or the file is neither a gzip nor an xz tarball. Nothing was written.

## Things you can try:
- Verify the download against the checksum recorded in Cargo.lock
- Fetch the crate again from the registry`,
	}

	metadataFailedIssue = &Issue{
		id: MetadataFailedId,
		mdMsg: `
# cargo metadata failed

The resolver runs cargo offline (` + "`--frozen`" + `) against the vendored sources, so
every dependency must already be present in the vendor directory.

## Things you can try:
- Make sure the vendor directory was produced from the same Cargo.lock
- Run the printed cargo command by hand to see its full output
- Check that the requested features exist in Cargo.toml`,
		docLinks: []HttpLink{"https://doc.rust-lang.org/cargo/commands/cargo-metadata.html"},
	}

	unsupportedPackageIssue = &Issue{
		id: UnsupportedPackageId,
		mdMsg: `
# Unsupported package layout

A package in the dependency graph uses a shape that cannot be built
without cargo: more than one library target, several build scripts,
a source outside the project and vendor directories, or a library
crate type other than lib, rlib, proc-macro or cdylib.

## Things you can try:
- Run with ` + "`--verbose`" + ` to see which package and target were rejected
- Pin a release of the dependency that uses a single library target`,
	}

	jobDecodeFailedIssue = &Issue{
		id: JobDecodeFailedId,
		mdMsg: `
# Could not read a job or record file

A job JSON, a library record (` + "`rust-lib.toml`" + `) or a build-script result
(` + "`result.toml`" + `) is missing or malformed. These files are produced by
earlier cargoshim steps and are not meant to be edited.

## Things you can try:
- Rebuild the dependency that produced the record
- Regenerate the job with ` + "`cargoshim metadata`" + ``,
	}

	buildScriptFailedIssue = &Issue{
		id: BuildScriptFailedId,
		mdMsg: `
# The build script failed

The build script exited with a non-zero status or reported
` + "`cargo::error=`" + `. Its output is echoed above with a ` + "`build-script:`" + ` prefix.

## Things you can try:
- Look for ` + "`error:`" + ` lines in the output
- Check that native tools the script needs (cc, pkg-config, ...) are on PATH
- A script printing ` + "`cargo::metadata`" + ` needs a ` + "`links`" + ` key in Cargo.toml`,
		docLinks: []HttpLink{"https://doc.rust-lang.org/cargo/reference/build-scripts.html"},
	}

	compileFailedIssue = &Issue{
		id: CompileFailedId,
		mdMsg: `
# rustc failed

The compiler exited with a non-zero status; cargoshim exits with the same
code. Run with ` + "`--verbose`" + ` to log the full rustc command line.

## Things you can try:
- Check that every dependency of the crate was built first
- Compare the edition and features with Cargo.toml`,
	}

	toolchainFailedIssue = &Issue{
		id: ToolchainFailedId,
		mdMsg: `
# Could not query the Rust toolchain

` + "`rustc --print=host-tuple`" + ` or ` + "`rustc --print=cfg`" + ` failed.

## Things you can try:
- Pass the absolute path of rustc on the command line
- Set ` + "`toolchain.rustc`" + ` in the config file`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle

The normal and build dependencies of the listed packages form a cycle, so
no build order exists. Dev-dependencies do not take part in the order.`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		lockfileInvalidIssue.Id():    lockfileInvalidIssue,
		unsafeArchiveIssue.Id():      unsafeArchiveIssue,
		metadataFailedIssue.Id():     metadataFailedIssue,
		unsupportedPackageIssue.Id(): unsupportedPackageIssue,
		jobDecodeFailedIssue.Id():    jobDecodeFailedIssue,
		buildScriptFailedIssue.Id():  buildScriptFailedIssue,
		compileFailedIssue.Id():      compileFailedIssue,
		toolchainFailedIssue.Id():    toolchainFailedIssue,
		dependencyCycleIssue.Id():    dependencyCycleIssue,
	}
)

// Values returns every issue ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
