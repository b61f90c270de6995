package object

import (
	"fmt"

	"github.com/probelab/pal/bytecode"
)

// Generator wraps a compiled iter declaration. Calling a generator does
// not run its body: it captures the callee-and-arguments window off the
// operand stack and hands back a primed Iterator. Each yield saves the
// window and instruction pointer here so the next advance can rebuild
// the frame exactly where it left off.
//
// A generator holds one resume state. Priming it again abandons any
// Iterator still mid-iteration.
type Generator struct {
	base
	fn    *bytecode.Function
	saved []Value
	ip    int
}

func (g *Generator) Type() Type {
	return GENERATOR
}

// Bytecode returns the compiled form executed by the VM.
func (g *Generator) Bytecode() *bytecode.Function {
	return g.fn
}

func (g *Generator) Name() string {
	return g.fn.Name()
}

func (g *Generator) Arity() int {
	return g.fn.Arity()
}

func (g *Generator) Inspect() string {
	return fmt.Sprintf("<Un-Primed Iterator %q>", g.fn.Name())
}

// Prime records a fresh resume state. The window holds the callee and
// its arguments; where it lands on the stack is decided by the loop
// that advances the iterator, not by the priming call.
func (g *Generator) Prime(window []Value) *Iterator {
	g.saved = window
	g.ip = 0
	return &Iterator{gen: g}
}

// Suspend saves the frame window and instruction pointer at a yield.
func (g *Generator) Suspend(window []Value, ip int) {
	g.saved = window
	g.ip = ip
}

// Saved returns the last saved window and instruction pointer.
func (g *Generator) Saved() ([]Value, int) {
	return g.saved, g.ip
}

// NewGenerator wraps compiled bytecode as a primable value.
func NewGenerator(fn *bytecode.Function) *Generator {
	return &Generator{fn: fn}
}

// Iterator is a primed Generator, ready to be advanced by an iterate
// loop.
type Iterator struct {
	base
	gen *Generator
}

func (it *Iterator) Type() Type {
	return ITERATOR
}

func (it *Iterator) Inspect() string {
	return fmt.Sprintf("<Primed Iterator %q>", it.gen.fn.Name())
}

// Generator returns the generator this iterator draws from.
func (it *Iterator) Generator() *Generator {
	return it.gen
}
