// SPDX-License-Identifier: MPL-2.0

package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/exp/slices"

	"kiln-cli/internal/compiler"
	"kiln-cli/internal/pkgsrc"
	"kiln-cli/internal/workcache"
	"kiln-cli/internal/workspace"
	"kiln-cli/pkg/pkgid"
)

type (
	// Builder builds, installs and removes packages. It is owned by one run
	// and is not safe for concurrent use.
	Builder struct {
		Cache    *workcache.Cache
		Compiler compiler.Compiler
		Logger   *slog.Logger
		// SearchPath lists further workspaces to search for dependency
		// libraries after the one being built in.
		SearchPath workspace.SearchPath
	}

	// CrateResult is the outcome of one crate of a Build.
	CrateResult struct {
		Kind     workspace.OutputKind
		Source   string
		Output   string
		Compiled bool
	}

	// Result is the outcome of Build.
	Result struct {
		ID        pkgid.ID
		Workspace workspace.Workspace
		SourceDir string
		Crates    []CrateResult
	}
)

// Compiled returns how many crates were compiled rather than reused.
func (r *Result) Compiled() int {
	n := 0
	for _, c := range r.Crates {
		if c.Compiled {
			n++
		}
	}
	return n
}

// Output returns the build-stage artifact of the given kind.
func (r *Result) Output(kind workspace.OutputKind) (string, bool) {
	for _, c := range r.Crates {
		if c.Kind == kind {
			return c.Output, true
		}
	}
	return "", false
}

// Build compiles every crate of id found in ws's sources. Crates whose
// inputs, dependency libraries and output all match the recorded
// fingerprints are not recompiled and their artifacts are not touched.
func (b *Builder) Build(ctx context.Context, ws workspace.Workspace, id pkgid.ID) (*Result, error) {
	logger := b.logger()

	srcDir, ok := ws.FirstSourceDir(id)
	if !ok {
		return nil, &PackageNotFoundError{ID: id, Workspace: ws.Root()}
	}

	pkg, err := pkgsrc.Load(id, srcDir)
	if err != nil {
		return nil, err
	}

	deps := make([]string, 0, len(pkg.Dependencies))
	for _, dep := range pkg.Dependencies {
		p, err := b.resolveDependency(ws, dep)
		if err != nil {
			return nil, fmt.Errorf("dependency %s of %s: %w", dep, id, err)
		}
		deps = append(deps, p)
	}

	// The library goes first so executables in the same package link it.
	crates := slices.Clone(pkg.Crates)
	slices.SortStableFunc(crates, func(a, c pkgsrc.Crate) int {
		switch {
		case a.Kind == workspace.Lib && c.Kind != workspace.Lib:
			return -1
		case a.Kind != workspace.Lib && c.Kind == workspace.Lib:
			return 1
		default:
			return 0
		}
	})

	result := &Result{ID: id, Workspace: ws, SourceDir: srcDir}
	var ownLib string
	for _, crate := range crates {
		crateDeps := deps
		if ownLib != "" && crate.Kind.IsExecutable() {
			crateDeps = append(slices.Clone(deps), ownLib)
		}

		cr, err := b.buildCrate(ctx, ws, pkg, crate, crateDeps)
		if err != nil {
			return nil, err
		}
		if crate.Kind == workspace.Lib {
			ownLib = cr.Output
		}
		result.Crates = append(result.Crates, cr)
	}

	logger.Debug("package built", "package", id.String(), "crates", len(result.Crates), "compiled", result.Compiled())
	return result, nil
}

func (b *Builder) buildCrate(ctx context.Context, ws workspace.Workspace, pkg *pkgsrc.Package, crate pkgsrc.Crate, deps []string) (CrateResult, error) {
	out, err := b.outputPath(ws, pkg.ID, crate.Kind)
	if err != nil {
		return CrateResult{}, err
	}
	cr := CrateResult{Kind: crate.Kind, Source: crate.Source, Output: out}

	if b.upToDate(out, pkg.Inputs, deps) {
		b.logger().Debug("crate up to date", "package", pkg.ID.String(), "kind", crate.Kind, "output", out)
		return cr, nil
	}

	// Entries for inputs that no longer exist must not linger.
	b.Cache.Forget(out)

	req := compiler.Request{
		Package:   pkg.ID,
		Kind:      crate.Kind,
		Source:    crate.Source,
		SourceDir: pkg.Dir,
		Output:    out,
		Deps:      deps,
	}
	if err := b.Compiler.Compile(ctx, req); err != nil {
		return CrateResult{}, &StepError{ID: pkg.ID, Target: out, Err: err}
	}

	if info, err := os.Stat(out); err != nil || !info.Mode().IsRegular() {
		return CrateResult{}, &MissingArtifactError{ID: pkg.ID, Path: out}
	}

	for _, in := range pkg.Inputs {
		if err := b.Cache.Record(out, workcache.KindFile, in); err != nil {
			return CrateResult{}, err
		}
	}
	for _, dep := range deps {
		if err := b.Cache.Record(out, workcache.KindBinary, dep); err != nil {
			return CrateResult{}, err
		}
	}
	if err := b.Cache.Record(out, workcache.KindBinary, out); err != nil {
		return CrateResult{}, err
	}

	cr.Compiled = true
	b.logger().Debug("crate compiled", "package", pkg.ID.String(), "kind", crate.Kind, "output", out)
	return cr, nil
}

// upToDate reports whether the unit producing out was last recorded against
// exactly the current inputs, dependencies and out, and all of them still
// match their fingerprints. A removed input or dependency makes it stale.
func (b *Builder) upToDate(out string, inputs, deps []string) bool {
	want := make(map[workcache.Key]struct{}, len(inputs)+len(deps)+1)
	want[workcache.Key{Kind: workcache.KindBinary, Subject: out}] = struct{}{}
	for _, in := range inputs {
		want[workcache.Key{Kind: workcache.KindFile, Subject: in}] = struct{}{}
	}
	for _, dep := range deps {
		want[workcache.Key{Kind: workcache.KindBinary, Subject: dep}] = struct{}{}
	}

	stored := b.Cache.Keys(out)
	if len(stored) != len(want) {
		b.logger().Debug("recorded inputs changed", "output", out, "recorded", len(stored), "current", len(want))
		return false
	}
	for _, key := range stored {
		if _, ok := want[key]; !ok {
			b.logger().Debug("recorded input no longer used", "output", out, "subject", key.Subject)
			return false
		}
	}

	for key := range want {
		if !b.Cache.Fresh(out, key.Kind, key.Subject) {
			return false
		}
	}
	return true
}

// outputPath returns the build-stage artifact path of kind. Libraries carry
// the crate hash, so their name is derived from the nominal path.
func (b *Builder) outputPath(ws workspace.Workspace, id pkgid.ID, kind workspace.OutputKind) (string, error) {
	p, err := ws.OutputPath(id, kind, workspace.Build)
	if err != nil {
		return "", err
	}
	if kind == workspace.Lib {
		p = filepath.Join(filepath.Dir(p), workspace.LibraryFilename(id))
	}
	return p, nil
}

// resolveDependency finds dep's library: installed in ws, built in ws, then
// the same in every other search path workspace.
func (b *Builder) resolveDependency(ws workspace.Workspace, dep pkgid.ID) (string, error) {
	candidates := []workspace.Workspace{ws}
	for _, w := range b.SearchPath {
		if w != ws {
			candidates = append(candidates, w)
		}
	}

	var notFound error
	for _, w := range candidates {
		for _, stage := range []workspace.Stage{workspace.Install, workspace.Build} {
			p, err := w.RequireLibrary(dep, stage)
			if err == nil {
				return p, nil
			}
			if !errors.Is(err, workspace.ErrArtifactNotFound) {
				return "", err
			}
			if notFound == nil {
				notFound = err
			}
		}
	}
	return "", notFound
}

// Flush persists the workcache.
func (b *Builder) Flush() error {
	return b.Cache.Flush()
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}
