package vm

import (
	"github.com/probelab/pal/bytecode"
	"github.com/probelab/pal/object"
)

// frame is one active call. Its window on the shared operand stack runs
// from base to the machine's stack pointer; slot 0 of the window holds
// the callee and user locals start at slot 1.
type frame struct {
	fn    *bytecode.Function
	chunk *bytecode.Chunk
	ip    int
	base  int

	// gen is set when this frame resumes a generator. Its presence is
	// what distinguishes a generator running out (loop exhaustion) from
	// an ordinary function return.
	gen *object.Generator

	// bindingIdx is the index of the iteration binding that pushed this
	// frame, or -1.
	bindingIdx int
}

// name returns the frame's display name for tracebacks.
func (f *frame) name() string {
	if f.fn.Name() == "" {
		return "script"
	}
	return f.fn.Name()
}

// binding is the per-loop iteration state of one iterate loop. Bindings
// are keyed by the chunk offset of their ADVANCE instruction plus the
// frame depth the loop runs at, so loops nest freely: each backward
// jump re-pushes the iterator of its own loop only, and exhaustion
// unwinds to the base this loop started from.
type binding struct {
	advancePos int
	depth      int
	fn         *bytecode.Function
	iter       object.Value
	base       int
}
