// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"cmp"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
)

// Placeholders substituted for the roots inside package ids.
const (
	ProjectPlaceholder = "{project}"
	VendorPlaceholder  = "{vendor}"
)

// roots knows the two directories every referenced path must live under.
type roots struct {
	project string
	vendor  string
}

func newRoots(project, vendor string) roots {
	return roots{project: filepath.Clean(project), vendor: filepath.Clean(vendor)}
}

// relative rewrites p relative to the project root, or relative to its
// package directory inside the vendor root.
func (r roots) relative(pkg, p string) (string, error) {
	p = filepath.Clean(p)
	if rest, ok := stripPrefix(p, r.project); ok {
		return rest, nil
	}
	if rest, ok := stripPrefix(p, r.vendor); ok {
		if rest == "" {
			return "", structural(pkg, "path %s names the vendor dir itself", p)
		}
		_, inPackage, _ := strings.Cut(rest, string(filepath.Separator))
		return inPackage, nil
	}
	return "", structural(pkg, "path %s is not part of project or vendor dir", p)
}

// optional applies relative to an optional path.
func (r roots) optional(pkg, p string) (*string, error) {
	if p == "" {
		return nil, nil
	}
	rel, err := r.relative(pkg, p)
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// identity replaces the roots inside a package id with placeholders. The
// longer root is replaced first so a vendor dir nested in the project keeps
// its own placeholder.
func (r roots) identity(id string) string {
	type sub struct{ root, placeholder string }
	subs := []sub{{r.project, ProjectPlaceholder}, {r.vendor, VendorPlaceholder}}
	slices.SortFunc(subs, func(a, b sub) int { return cmp.Compare(len(b.root), len(a.root)) })
	for _, s := range subs {
		if s.root == "" || s.root == string(filepath.Separator) {
			continue
		}
		id = strings.ReplaceAll(id, s.root, s.placeholder)
	}
	return id
}

func stripPrefix(p, root string) (string, bool) {
	if p == root {
		return "", true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	rest, ok := strings.CutPrefix(p, prefix)
	return rest, ok
}
