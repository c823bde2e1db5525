// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/cargoshim/cargoshim/internal/crate"
	"github.com/cargoshim/cargoshim/internal/dag"
)

// Target kinds and crate types as cargo metadata reports them.
const (
	buildScriptTarget = "build-script-build"
	buildScriptCrate  = "build_script_build"

	kindCustomBuild = "custom-build"
	kindLib         = "lib"
	kindProcMacro   = "proc-macro"
	kindCdylib      = "cdylib"
	kindBin         = "bin"
)

// Resolve turns decoded metadata into the resolver output. It performs no
// I/O; opts supplies the roots and the target.
func Resolve(meta *Metadata, opts Options) (*Output, error) {
	if meta.Resolve == nil {
		return nil, fmt.Errorf("%w: no resolve in metadata", ErrInvalidMetadata)
	}
	r := newRoots(opts.ProjectDir, opts.VendorDir)

	ids, err := rewriteIDs(meta, r)
	if err != nil {
		return nil, err
	}
	packages := make(map[string]*Package, len(meta.Packages))
	for i := range meta.Packages {
		packages[meta.Packages[i].ID] = &meta.Packages[i]
	}

	out := &Output{
		Packages:  make(map[string]*ResolvedPackage, len(meta.Resolve.Nodes)),
		Workspace: make(map[string]string, len(meta.WorkspaceMembers)),
	}
	for _, member := range meta.WorkspaceMembers {
		pkg, ok := packages[member]
		if !ok {
			return nil, fmt.Errorf("%w: unknown workspace member %s", ErrInvalidMetadata, member)
		}
		out.Workspace[pkg.Name] = ids[member]
	}
	if root := meta.Resolve.Root; root != "" {
		id := ids[root]
		out.MainPackage = &id
	}

	graph := dag.New()
	nodes := slices.Clone(meta.Resolve.Nodes)
	slices.SortFunc(nodes, func(a, b Node) int { return strings.Compare(ids[a.ID], ids[b.ID]) })
	for _, node := range nodes {
		pkg, ok := packages[node.ID]
		if !ok {
			return nil, fmt.Errorf("%w: no package for resolve node %s", ErrInvalidMetadata, node.ID)
		}
		id := ids[node.ID]
		resolved, err := resolvePackage(pkg, node, id, ids, r, opts.Target)
		if err != nil {
			return nil, err
		}
		out.Packages[id] = resolved

		graph.AddNode(id)
		for _, dep := range node.Deps {
			if kinds := edgeKinds(dep); kinds.normal || kinds.build {
				graph.AddEdge(ids[dep.Pkg], id)
			}
		}
	}

	order, err := graph.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStructural, err)
	}
	out.BuildOrder = order
	return out, nil
}

// rewriteIDs maps every package id to its root-independent form.
func rewriteIDs(meta *Metadata, r roots) (map[string]string, error) {
	ids := make(map[string]string, len(meta.Packages))
	owners := make(map[string]string, len(meta.Packages))
	for _, pkg := range meta.Packages {
		rewritten := r.identity(pkg.ID)
		if prev, ok := owners[rewritten]; ok && prev != pkg.ID {
			return nil, structural(pkg.ID, "identity collides with %s after rewriting to %s", prev, rewritten)
		}
		owners[rewritten] = pkg.ID
		ids[pkg.ID] = rewritten
	}
	return ids, nil
}

type kinds struct{ normal, build bool }

func edgeKinds(dep NodeDep) kinds {
	var k kinds
	for _, dk := range dep.DepKinds {
		switch dk.Kind {
		case "":
			k.normal = true
		case depKindBuild:
			k.build = true
		case depKindDev:
			// Dev edges only feed tests, benches and examples.
		}
	}
	return k
}

func resolvePackage(pkg *Package, node Node, id string, ids map[string]string, r roots, target string) (*ResolvedPackage, error) {
	var deps, buildDeps []Dep
	for _, edge := range node.Deps {
		d := Dep{Name: edge.Name, Pkg: ids[edge.Pkg]}
		k := edgeKinds(edge)
		if k.normal {
			deps = append(deps, d)
		}
		if k.build {
			buildDeps = append(buildDeps, d)
		}
	}

	common, err := newCommon(pkg, node, id, r, target)
	if err != nil {
		return nil, err
	}
	rp := &ResolvedPackage{Common: *common}

	for _, t := range pkg.Targets {
		if !built(t) {
			continue
		}
		entrypoint, err := r.relative(id, t.SrcPath)
		if err != nil {
			return nil, err
		}
		job := Job{
			TargetName: t.Name,
			CrateName:  crate.NormalizeName(t.Name),
			Deps:       cloneDeps(deps),
			Entrypoint: entrypoint,
		}

		switch {
		case t.Name == buildScriptTarget:
			if !slices.Equal(t.Kind, []string{kindCustomBuild}) {
				return nil, structural(id, "build script has wrong target kind %v", t.Kind)
			}
			if !slices.Equal(t.CrateTypes, []string{kindBin}) {
				return nil, structural(id, "build script has wrong crate type %v", t.CrateTypes)
			}
			if rp.BuildScript != nil {
				return nil, structural(id, "more than one buildscript in crate")
			}
			job.CrateName = buildScriptCrate
			job.CrateType = crate.CrateTypeBin
			job.Deps = cloneDeps(buildDeps)
			rp.BuildScript = &BuildScriptJob{
				MainDeps:      cloneDeps(deps),
				MainCrateName: crate.NormalizeName(pkg.Name),
				Job:           job,
			}

		case is(t, kindLib), is(t, kindProcMacro):
			if rp.CLib != nil {
				return nil, structural(id, "already clib")
			}
			if rp.RustLib != nil {
				return nil, structural(id, "more than one lib in crate")
			}
			job.CrateType = crate.CrateTypeLib
			if !is(t, kindLib) {
				job.CrateType = crate.CrateTypeProcMacro
			}
			rp.RustLib = &job

		case is(t, kindCdylib):
			if rp.RustLib != nil {
				return nil, structural(id, "already rust lib")
			}
			if len(rp.Bins) > 0 {
				return nil, structural(id, "already bin")
			}
			if rp.CLib != nil {
				return nil, structural(id, "more than one clib in crate")
			}
			job.CrateType = crate.CrateTypeCdylib
			rp.CLib = &job

		case is(t, kindBin):
			if rp.CLib != nil {
				return nil, structural(id, "already clib")
			}
			job.CrateType = crate.CrateTypeBin
			rp.Bins = append(rp.Bins, job)
		}
	}
	return rp, nil
}

// built reports whether t is one of the targets the build graph compiles.
// Tests, benches, examples and other crate types are skipped.
func built(t Target) bool {
	return t.Name == buildScriptTarget ||
		is(t, kindLib) || is(t, kindProcMacro) || is(t, kindCdylib) || is(t, kindBin)
}

// is reports whether t has kind as both its target kind and crate type.
func is(t Target, kind string) bool {
	return slices.Contains(t.Kind, kind) && slices.Contains(t.CrateTypes, kind)
}

func cloneDeps(deps []Dep) []Dep {
	if deps == nil {
		return []Dep{}
	}
	return slices.Clone(deps)
}

func newCommon(pkg *Package, node Node, id string, r roots, target string) (*Common, error) {
	manifest, err := r.relative(id, pkg.ManifestPath)
	if err != nil {
		return nil, err
	}
	licenseFile, err := r.optional(id, pkg.LicenseFile)
	if err != nil {
		return nil, err
	}
	readme, err := r.optional(id, pkg.Readme)
	if err != nil {
		return nil, err
	}

	features := slices.Clone(node.Features)
	if features == nil {
		features = []string{}
	}
	allFeatures := make([]string, 0, len(pkg.Features))
	for name := range pkg.Features {
		allFeatures = append(allFeatures, name)
	}
	slices.Sort(allFeatures)

	edition := crate.Edition(pkg.Edition)
	if edition == "" {
		edition = crate.Edition2015
	}
	if err := edition.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidMetadata, id, err)
	}

	var authors *string
	if len(pkg.Authors) > 0 {
		joined := strings.Join(pkg.Authors, ":")
		authors = &joined
	}

	return &Common{
		ManifestPath:  manifest,
		Version:       pkg.Version,
		Authors:       authors,
		Pname:         pkg.Name,
		Description:   optional(pkg.Description),
		Homepage:      optional(pkg.Homepage),
		Repository:    optional(pkg.Repository),
		License:       optional(pkg.License),
		LicenseFile:   licenseFile,
		RustVersion:   optional(pkg.RustVersion),
		Readme:        readme,
		Target:        target,
		Features:      features,
		AllFeatures:   allFeatures,
		Edition:       edition,
		MainWorkspace: pkg.Source == "",
		Links:         optional(pkg.Links),
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
