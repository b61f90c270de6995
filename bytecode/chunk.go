package bytecode

import "github.com/probelab/pal/op"

// Chunk is the code container the compiler emits into: a flat sequence
// of op.Code cells (an opcode or an operand, stored uniformly), an
// append-only constant pool, and a source location per cell. The
// compiler mutates a Chunk while building it; once compilation returns
// the Chunk is treated as frozen and is safe to share.
type Chunk struct {
	code      []op.Code
	constants []any
	locations []SourceLocation
}

// NewChunk returns an empty Chunk.
func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends one cell with its source location. Operands are written
// with the location of the opcode they belong to.
func (c *Chunk) Write(cell op.Code, loc SourceLocation) {
	c.code = append(c.code, cell)
	c.locations = append(c.locations, loc)
}

// AddConstant appends a value to the constant pool and returns its
// index. Indices are stable: the pool never shrinks or reorders.
func (c *Chunk) AddConstant(value any) int {
	c.constants = append(c.constants, value)
	return len(c.constants) - 1
}

// Len returns the number of cells written so far.
func (c *Chunk) Len() int {
	return len(c.code)
}

// At returns the cell at the given index.
func (c *Chunk) At(index int) op.Code {
	return c.code[index]
}

// SetAt overwrites the cell at the given index. The compiler uses this
// to patch forward jump operands once their target is known.
func (c *Chunk) SetAt(index int, cell op.Code) {
	c.code[index] = cell
}

// ConstantCount returns the number of pooled constants.
func (c *Chunk) ConstantCount() int {
	return len(c.constants)
}

// ConstantAt returns the constant at the given index.
func (c *Chunk) ConstantAt(index int) any {
	return c.constants[index]
}

// LocationAt returns the source location recorded for the cell at the
// given index, or the zero location when the index is out of range.
func (c *Chunk) LocationAt(index int) SourceLocation {
	if index < 0 || index >= len(c.locations) {
		return SourceLocation{}
	}
	return c.locations[index]
}
