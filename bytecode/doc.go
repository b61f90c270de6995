// Package bytecode defines the output of PAL compilation: chunks of
// code cells, constant pools, and function templates.
//
// # Key Types
//
//   - [Chunk]: a code container holding cells, constants, and locations
//   - [Function]: a compiled function template wrapping a Chunk
//   - [SourceLocation]: maps a cell back to a source position
//   - [Stats]: aggregate counts for auditing a compiled script
//
// # Mutability
//
// A Chunk is a builder: the compiler appends cells and constants and
// patches jump operands in place. Once compilation returns, nothing
// mutates a Chunk again and it may be shared freely. Function is
// immutable from construction.
//
// # Package Dependencies
//
// This package depends only on op, to avoid a circular dependency with
// the object package. Constants are stored as []any; the VM asserts
// them back to runtime values when it loads them.
package bytecode
