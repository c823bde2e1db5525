// SPDX-License-Identifier: MPL-2.0

package buildscript

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color modes accepted by NewPrinter.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var (
	colorPrefix  = lipgloss.Color("#3B82F6")
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
)

// Printer renders build-script progress: state changes in plain text,
// warnings and errors with a colored label, and every raw line behind a
// colored "build-script" prefix.
type Printer struct {
	w       io.Writer
	prefix  lipgloss.Style
	errors  lipgloss.Style
	warning lipgloss.Style
}

// NewPrinter returns a Printer writing to w. mode is one of ColorAuto,
// ColorAlways or ColorNever; anything else behaves like ColorAuto.
func NewPrinter(w io.Writer, mode string) *Printer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:       w,
		prefix:  r.NewStyle().Foreground(colorPrefix),
		errors:  r.NewStyle().Bold(true).Foreground(colorError),
		warning: r.NewStyle().Foreground(colorWarning),
	}
}

// Line reports one line of build-script output and what it changed.
func (p *Printer) Line(line string, d Directive) {
	if msg := p.describe(d); msg != "" {
		fmt.Fprintln(p.w, msg)
	}
	fmt.Fprintf(p.w, "%s: %s\n", p.prefix.Render("build-script"), line)
}

func (p *Printer) describe(d Directive) string {
	switch d.Kind {
	case LinkArg:
		return fmt.Sprintf("added link arg: %q", d.Value)
	case LinkArgCdylib:
		return fmt.Sprintf("added cdylib link arg: %q", d.Value)
	case LinkArgBin:
		return fmt.Sprintf("added link arg for bin %s: %q", d.Name, d.Value)
	case LinkArgBins:
		return fmt.Sprintf("added bin link arg: %q", d.Value)
	case LinkLib:
		return "link to " + d.Value
	case LinkSearch:
		return "added link path: " + d.Value
	case Flags:
		return fmt.Sprintf("added rustc flags: %q", strings.Fields(d.Value))
	case Cfg:
		return fmt.Sprintf("added cfg: %q", d.Value)
	case CheckCfg:
		return fmt.Sprintf("added check-cfg: %q", d.Value)
	case Env:
		return fmt.Sprintf("added env value: %s=%q", d.Name, d.Value)
	case Metadata:
		return fmt.Sprintf("added metadata %q = %q", d.Name, d.Value)
	case Error:
		return p.errors.Render("error") + ": " + d.Value
	case Warning:
		return p.warning.Render("warning") + ": " + d.Value
	default:
		return ""
	}
}
