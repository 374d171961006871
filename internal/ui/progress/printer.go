// Package progress renders the prune engine's narration and progress bar,
// separated from the engine itself the way restic's internal/ui/progress
// keeps terminal concerns out of its commands.
package progress

import (
	"fmt"
	"io"
)

// Printer is the narration surface the prune engine and its CLI command
// write through. P, V and VV are gated by verbosity level (P is hidden
// only when quiet); E is always shown and goes to the error stream.
type Printer interface {
	P(format string, args ...interface{})
	V(format string, args ...interface{})
	VV(format string, args ...interface{})
	E(format string, args ...interface{})
	NewCounter(description string) *Counter
}

// TerminalPrinter writes to Out/Err, gating P/V/VV on verbosity (0 quiet, 1
// normal, 2 verbose, 3 very verbose, matching restic's --verbose count
// flag).
type TerminalPrinter struct {
	Out, Err io.Writer
	Verbosity int
}

// NewTerminalPrinter returns a printer writing to out/err at the given
// verbosity.
func NewTerminalPrinter(verbosity int, out, err io.Writer) *TerminalPrinter {
	return &TerminalPrinter{Out: out, Err: err, Verbosity: verbosity}
}

func (p *TerminalPrinter) P(format string, args ...interface{}) {
	if p.Verbosity < 1 {
		return
	}
	fmt.Fprintf(p.Out, format, args...)
}

func (p *TerminalPrinter) V(format string, args ...interface{}) {
	if p.Verbosity < 2 {
		return
	}
	fmt.Fprintf(p.Out, format, args...)
}

func (p *TerminalPrinter) VV(format string, args ...interface{}) {
	if p.Verbosity < 3 {
		return
	}
	fmt.Fprintf(p.Out, format, args...)
}

func (p *TerminalPrinter) E(format string, args ...interface{}) {
	fmt.Fprintf(p.Err, format, args...)
}

func (p *TerminalPrinter) NewCounter(description string) *Counter {
	return newCounter(p.Out, description)
}

// NoopPrinter discards everything; useful for library callers and tests.
type NoopPrinter struct{}

func (NoopPrinter) P(string, ...interface{})  {}
func (NoopPrinter) V(string, ...interface{})  {}
func (NoopPrinter) VV(string, ...interface{}) {}
func (NoopPrinter) E(string, ...interface{})  {}
func (NoopPrinter) NewCounter(string) *Counter {
	return nil
}

var _ Printer = NoopPrinter{}
var _ Printer = (*TerminalPrinter)(nil)
