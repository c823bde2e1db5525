// SPDX-License-Identifier: MPL-2.0

package buildscript

import (
	"strings"

	"github.com/cargoshim/cargoshim/internal/sidecar"
)

// Collector folds directives into a BuildScriptResult.
type Collector struct {
	Result *sidecar.BuildScriptResult
	failed bool
}

// NewCollector returns a Collector with an empty result.
func NewCollector() *Collector {
	return &Collector{Result: sidecar.NewBuildScriptResult()}
}

// Apply records d. It returns true when d is an error directive; the run
// fails once the script has exited.
func (c *Collector) Apply(d Directive) bool {
	r := c.Result
	switch d.Kind {
	case LinkArg:
		r.LinkArgs = append(r.LinkArgs, d.Value)
	case LinkArgCdylib:
		r.LinkArgsCdylib = append(r.LinkArgsCdylib, d.Value)
	case LinkArgBin:
		r.LinkArgsBin[d.Name] = append(r.LinkArgsBin[d.Name], d.Value)
	case LinkArgBins:
		r.LinkArgsBins = append(r.LinkArgsBins, d.Value)
	case LinkLib:
		r.LinkLib = append(r.LinkLib, d.Value)
	case LinkSearch:
		r.LibPath = append(r.LibPath, d.Value)
	case Flags:
		r.Flags = append(r.Flags, strings.Fields(d.Value)...)
	case Cfg:
		r.Cfgs = append(r.Cfgs, d.Value)
	case CheckCfg:
		r.CheckCfgs = append(r.CheckCfgs, d.Value)
	case Env:
		r.Envs[d.Name] = d.Value
	case Metadata:
		r.Metadata[d.Name] = d.Value
	case Error:
		c.failed = true
		return true
	}
	return false
}

// Failed reports whether an error directive has been seen.
func (c *Collector) Failed() bool { return c.failed }
