package bytecode

import (
	"testing"

	"github.com/probelab/pal/op"
)

// fnConstant stands in for the runtime value that wraps a compiled
// function in a constant pool.
type fnConstant struct {
	fn *Function
}

func (c fnConstant) Bytecode() *Function { return c.fn }

func TestFunctionAccessors(t *testing.T) {
	chunk := NewChunk()
	fn := NewFunction("stage", 2, chunk)
	if fn.Name() != "stage" {
		t.Errorf("expected name 'stage', got %q", fn.Name())
	}
	if fn.Arity() != 2 {
		t.Errorf("expected arity 2, got %d", fn.Arity())
	}
	if fn.Chunk() != chunk {
		t.Error("expected Chunk to return the wrapped chunk")
	}
	if fn.String() != "func stage/2" {
		t.Errorf("unexpected String: %q", fn.String())
	}

	root := NewFunction("", 0, NewChunk())
	if root.String() != "script" {
		t.Errorf("unexpected root String: %q", root.String())
	}
}

func TestFunctionStats(t *testing.T) {
	loc := SourceLocation{Line: 1, Column: 1}

	inner := NewChunk()
	inner.Write(op.Null, loc)
	inner.Write(op.Return, loc)
	innerFn := NewFunction("helper", 0, inner)

	rootChunk := NewChunk()
	rootChunk.Write(op.Constant, loc)
	rootChunk.Write(op.Code(rootChunk.AddConstant(fnConstant{innerFn})), loc)
	rootChunk.Write(op.Pop, loc)
	rootChunk.AddConstant(42.0)
	root := NewFunction("", 0, rootChunk)

	stats := root.Stats()
	if stats.InstructionCount != 5 {
		t.Errorf("expected InstructionCount 5, got %d", stats.InstructionCount)
	}
	if stats.ConstantCount != 2 {
		t.Errorf("expected ConstantCount 2, got %d", stats.ConstantCount)
	}
	if stats.FunctionCount != 1 {
		t.Errorf("expected FunctionCount 1, got %d", stats.FunctionCount)
	}
	if stats.SourceBytes != 0 {
		t.Errorf("expected SourceBytes 0, got %d", stats.SourceBytes)
	}
}
