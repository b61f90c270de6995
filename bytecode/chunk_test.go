package bytecode

import (
	"testing"

	"github.com/probelab/pal/op"
)

func TestChunkWrite(t *testing.T) {
	chunk := NewChunk()
	if chunk.Len() != 0 {
		t.Errorf("expected empty chunk, got %d cells", chunk.Len())
	}
	loc := SourceLocation{Line: 1, Column: 1}
	chunk.Write(op.Constant, loc)
	chunk.Write(op.Code(0), loc)
	chunk.Write(op.Pop, SourceLocation{Line: 2, Column: 1})
	if chunk.Len() != 3 {
		t.Errorf("expected 3 cells, got %d", chunk.Len())
	}
	if chunk.At(0) != op.Constant {
		t.Errorf("expected cell 0 to be CONSTANT, got %v", chunk.At(0))
	}
	if chunk.At(2) != op.Pop {
		t.Errorf("expected cell 2 to be POP, got %v", chunk.At(2))
	}
}

func TestChunkSetAt(t *testing.T) {
	chunk := NewChunk()
	loc := SourceLocation{Line: 1, Column: 1}
	chunk.Write(op.FalseyJump, loc)
	chunk.Write(op.Code(0xFFFF), loc)
	chunk.SetAt(1, op.Code(7))
	if chunk.At(1) != op.Code(7) {
		t.Errorf("expected patched operand 7, got %v", chunk.At(1))
	}
}

func TestChunkConstants(t *testing.T) {
	chunk := NewChunk()
	if idx := chunk.AddConstant("first"); idx != 0 {
		t.Errorf("expected index 0, got %d", idx)
	}
	if idx := chunk.AddConstant(42.0); idx != 1 {
		t.Errorf("expected index 1, got %d", idx)
	}
	// Duplicate values get their own slots; indices are stable.
	if idx := chunk.AddConstant("first"); idx != 2 {
		t.Errorf("expected index 2, got %d", idx)
	}
	if chunk.ConstantCount() != 3 {
		t.Errorf("expected 3 constants, got %d", chunk.ConstantCount())
	}
	if chunk.ConstantAt(1) != 42.0 {
		t.Errorf("expected constant 1 to be 42.0, got %v", chunk.ConstantAt(1))
	}
}

func TestChunkLocationAt(t *testing.T) {
	chunk := NewChunk()
	chunk.Write(op.True, SourceLocation{Line: 1, Column: 1})
	chunk.Write(op.Print, SourceLocation{Line: 2, Column: 5})

	loc := chunk.LocationAt(1)
	if loc.Line != 2 || loc.Column != 5 {
		t.Errorf("expected {2, 5}, got {%d, %d}", loc.Line, loc.Column)
	}

	// Out of range indices return the zero location.
	if !chunk.LocationAt(-1).IsZero() {
		t.Error("expected zero location for -1")
	}
	if !chunk.LocationAt(100).IsZero() {
		t.Error("expected zero location for 100")
	}
}

func TestSourceLocationString(t *testing.T) {
	loc := SourceLocation{Line: 12, Column: 3}
	if loc.String() != "12:3" {
		t.Errorf("expected '12:3', got %q", loc.String())
	}
	if loc.IsZero() {
		t.Error("expected IsZero to be false")
	}
	if !(SourceLocation{}).IsZero() {
		t.Error("expected zero value to report IsZero")
	}
}
