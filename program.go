package pal

import (
	"github.com/probelab/pal/bytecode"
)

// Program is the compiled representation of a script. It is immutable
// after creation; multiple machines may run the same Program.
type Program struct {
	fn         *bytecode.Function
	source     string
	sourceName string
}

// Fn returns the compiled script function.
func (p *Program) Fn() *bytecode.Function {
	return p.fn
}

// Source returns the original source text.
func (p *Program) Source() string {
	return p.source
}

// SourceName returns the name used in diagnostics for this program.
func (p *Program) SourceName() string {
	return p.sourceName
}

// Stats summarizes the compiled bytecode, including nested functions.
func (p *Program) Stats() bytecode.Stats {
	return p.fn.Stats()
}
