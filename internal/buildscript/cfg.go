// SPDX-License-Identifier: MPL-2.0

package buildscript

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
)

// ErrInvalidCfg is returned for a cfg that is neither `name` nor `name="value"`.
var ErrInvalidCfg = errors.New("unable to parse cfg")

var cfgPattern = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`^([^=\n]*)(?:="([^"\n]*)")?$`)
})

type (
	// CfgOption is a single parsed cfg. Value is meaningful only if HasValue.
	CfgOption struct {
		Name     string
		Value    string
		HasValue bool
	}

	// CfgSet collects cfg values per name. A name seen only without a value
	// maps to an empty set.
	CfgSet map[string]map[string]struct{}
)

// ParseCfg parses `name` or `name="value"`.
func ParseCfg(s string) (CfgOption, error) {
	m := cfgPattern().FindStringSubmatchIndex(s)
	if m == nil || m[3] == m[2] {
		return CfgOption{}, fmt.Errorf("%w: %q", ErrInvalidCfg, s)
	}
	opt := CfgOption{Name: s[m[2]:m[3]]}
	if m[4] >= 0 {
		opt.Value = s[m[4]:m[5]]
		opt.HasValue = true
	}
	return opt, nil
}

// ParseCfgList parses the line-oriented output of `rustc --print=cfg`.
// Blank lines are skipped.
func ParseCfgList(text string) ([]CfgOption, error) {
	var opts []CfgOption
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		opt, err := ParseCfg(line)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

// Add records opt. Adding a valueless cfg for a known name is a no-op.
func (s CfgSet) Add(opt CfgOption) {
	values, ok := s[opt.Name]
	if !ok {
		values = make(map[string]struct{})
		s[opt.Name] = values
	}
	if opt.HasValue {
		values[opt.Value] = struct{}{}
	}
}

// Values returns the sorted values recorded for name.
func (s CfgSet) Values(name string) []string {
	values := make([]string, 0, len(s[name]))
	for v := range s[name] {
		values = append(values, v)
	}
	slices.Sort(values)
	return values
}

// Env returns one CARGO_CFG_<NAME> variable per name, set to the
// comma-joined sorted values.
func (s CfgSet) Env() map[string]string {
	env := make(map[string]string, len(s))
	for name := range s {
		env["CARGO_CFG_"+strings.ToUpper(name)] = strings.Join(s.Values(name), ",")
	}
	return env
}
