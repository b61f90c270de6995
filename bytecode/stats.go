package bytecode

// Stats contains statistics about compiled bytecode. This is useful for
// auditing scripts before execution.
type Stats struct {
	// InstructionCount is the total number of code cells, including the
	// bodies of nested functions.
	InstructionCount int

	// ConstantCount is the total number of pooled constants.
	ConstantCount int

	// FunctionCount is the number of compiled functions and generators
	// found in constant pools.
	FunctionCount int

	// SourceBytes is the size of the original source code in bytes.
	SourceBytes int
}
