// SPDX-License-Identifier: MPL-2.0

package buildscript

import (
	"regexp"
	"strings"
	"sync"
)

const (
	// NotDirective is an ordinary output line.
	NotDirective Kind = iota
	// Unrecognized is a well-formed directive this runner does not model.
	Unrecognized
	LinkArg
	LinkArgCdylib
	LinkArgBin
	LinkArgBins
	// LinkArgIgnored covers link arguments for tests, examples and benches.
	LinkArgIgnored
	LinkLib
	LinkSearch
	Flags
	Cfg
	CheckCfg
	Env
	Warning
	Error
	Metadata
	// Rerun covers the rerun-if-* directives, which only matter to Cargo's
	// own freshness tracking.
	Rerun
)

var directivePattern = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`^\s*cargo(::?)([a-z\-_]+)=((?:([^=\s]+)=)?("(.*)"\s*|([^\s]+)\s*|.+))$`)
})

type (
	// Kind identifies a build-script directive.
	Kind int

	// Directive is one parsed line of build-script output.
	Directive struct {
		Kind Kind
		// Key is the directive name as written, e.g. "rustc-link-lib".
		Key string
		// Name is set for directives taking name=value: the binary name for
		// link-arg-bin, the variable for rustc-env and the key for metadata.
		Name string
		// Value is the trimmed argument.
		Value string
		// Legacy is true for the single-colon cargo:KEY=VALUE form.
		Legacy bool
	}
)

var kindNames = map[Kind]string{
	NotDirective:   "not-directive",
	Unrecognized:   "unrecognized",
	LinkArg:        "rustc-link-arg",
	LinkArgCdylib:  "rustc-link-arg-cdylib",
	LinkArgBin:     "rustc-link-arg-bin",
	LinkArgBins:    "rustc-link-arg-bins",
	LinkArgIgnored: "rustc-link-arg-ignored",
	LinkLib:        "rustc-link-lib",
	LinkSearch:     "rustc-link-search",
	Flags:          "rustc-flags",
	Cfg:            "rustc-cfg",
	CheckCfg:       "rustc-check-cfg",
	Env:            "rustc-env",
	Warning:        "warning",
	Error:          "error",
	Metadata:       "metadata",
	Rerun:          "rerun",
}

// String returns the directive name for known kinds.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseDirective classifies one line of build-script stdout.
func ParseDirective(line string) Directive {
	idx := directivePattern().FindStringSubmatchIndex(line)
	if idx == nil {
		return Directive{Kind: NotDirective}
	}
	group := func(i int) (string, bool) {
		if idx[2*i] < 0 {
			return "", false
		}
		return line[idx[2*i]:idx[2*i+1]], true
	}

	colon, _ := group(1)
	key, _ := group(2)
	whole, _ := group(3)
	d := Directive{
		Key:    key,
		Value:  strings.TrimSpace(whole),
		Legacy: colon == ":",
	}

	// withName switches d to its name=value reading. The value is kept as
	// written, quotes included.
	withName := func(kind Kind) Directive {
		name, ok := group(4)
		if !ok {
			d.Kind = Unrecognized
			return d
		}
		value, _ := group(5)
		d.Kind = kind
		d.Name = name
		d.Value = strings.TrimSpace(value)
		return d
	}

	switch key {
	case "rerun-if-changed", "rerun-if-env-changed":
		d.Kind = Rerun
	case "rustc-link-arg":
		d.Kind = LinkArg
	case "rustc-link-arg-cdylib":
		d.Kind = LinkArgCdylib
	case "rustc-link-arg-bin":
		return withName(LinkArgBin)
	case "rustc-link-arg-bins":
		d.Kind = LinkArgBins
	case "rustc-link-arg-tests", "rustc-link-arg-examples", "rustc-link-arg-benches":
		d.Kind = LinkArgIgnored
	case "rustc-link-lib":
		d.Kind = LinkLib
	case "rustc-link-search":
		d.Kind = LinkSearch
	case "rustc-flags":
		d.Kind = Flags
	case "rustc-cfg":
		d.Kind = Cfg
	case "rustc-check-cfg":
		d.Kind = CheckCfg
	case "rustc-env":
		return withName(Env)
	case "error":
		d.Kind = Error
		d.Value = whole
	case "warning":
		d.Kind = Warning
		d.Value = whole
	case "metadata":
		if !d.Legacy {
			return withName(Metadata)
		}
		d.Kind = Metadata
		d.Name = "metadata"
	default:
		if !d.Legacy {
			d.Kind = Unrecognized
			return d
		}
		d.Kind = Metadata
		d.Name = key
	}
	return d
}
