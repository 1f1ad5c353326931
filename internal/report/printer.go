// Package report prints human-readable progress lines.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// Printer writes progress lines to w.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Discard returns a Printer that writes nothing.
func Discard() *Printer {
	return &Printer{w: io.Discard}
}

// Info prints a plain line.
func (p *Printer) Info(format string, a ...any) {
	fmt.Fprintf(p.w, format+"\n", a...)
}

// Step prints a section heading.
func (p *Printer) Step(format string, a ...any) {
	cyan.Fprintf(p.w, "→ %s\n", fmt.Sprintf(format, a...))
}

// Success prints a green line with a checkmark.
func (p *Printer) Success(format string, a ...any) {
	green.Fprintf(p.w, "✓ %s\n", fmt.Sprintf(format, a...))
}

// Warning prints a yellow line with a warning sign.
func (p *Printer) Warning(format string, a ...any) {
	yellow.Fprintf(p.w, "⚠️  %s\n", fmt.Sprintf(format, a...))
}

// Failure prints a red line with a cross.
func (p *Printer) Failure(format string, a ...any) {
	red.Fprintf(p.w, "✗ %s\n", fmt.Sprintf(format, a...))
}
