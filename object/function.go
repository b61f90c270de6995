package object

import (
	"fmt"

	"github.com/probelab/pal/bytecode"
)

// Function wraps a compiled func declaration, or the implicit top-level
// script function.
type Function struct {
	base
	fn *bytecode.Function
}

func (f *Function) Type() Type {
	return FUNCTION
}

// Bytecode returns the compiled form executed by the VM.
func (f *Function) Bytecode() *bytecode.Function {
	return f.fn
}

func (f *Function) Name() string {
	return f.fn.Name()
}

func (f *Function) Arity() int {
	return f.fn.Arity()
}

func (f *Function) Inspect() string {
	if f.fn.Name() == "" {
		return "<Script>"
	}
	return fmt.Sprintf("<Function %q>", f.fn.Name())
}

// NewFunction wraps compiled bytecode as a callable value.
func NewFunction(fn *bytecode.Function) *Function {
	return &Function{fn: fn}
}
