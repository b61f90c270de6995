package bytecode

import "fmt"

// Function is a compiled function template: a name, an arity, and the
// Chunk holding its body. The root script compiles to a Function with
// an empty name and arity zero. Immutable after construction.
type Function struct {
	name  string
	arity int
	chunk *Chunk
}

// NewFunction creates a Function wrapping the given chunk.
func NewFunction(name string, arity int, chunk *Chunk) *Function {
	return &Function{name: name, arity: arity, chunk: chunk}
}

// Name returns the function name, or the empty string for the root
// script.
func (f *Function) Name() string {
	return f.name
}

// Arity returns the declared parameter count.
func (f *Function) Arity() int {
	return f.arity
}

// Chunk returns the compiled body.
func (f *Function) Chunk() *Chunk {
	return f.chunk
}

// String returns a short description of the function.
func (f *Function) String() string {
	if f.name == "" {
		return "script"
	}
	return fmt.Sprintf("func %s/%d", f.name, f.arity)
}

// compiledConstant is satisfied by runtime values that wrap a compiled
// Function, letting Stats find nested functions in the constant pool
// without depending on the object package.
type compiledConstant interface {
	Bytecode() *Function
}

// Stats computes statistics for this function and every function found
// in its constant pool, recursively. SourceBytes is left zero; callers
// that hold the source fill it in.
func (f *Function) Stats() Stats {
	var stats Stats
	f.addStats(&stats)
	return stats
}

func (f *Function) addStats(stats *Stats) {
	if f.chunk == nil {
		return
	}
	stats.InstructionCount += f.chunk.Len()
	stats.ConstantCount += f.chunk.ConstantCount()
	for i := 0; i < f.chunk.ConstantCount(); i++ {
		if c, ok := f.chunk.ConstantAt(i).(compiledConstant); ok {
			stats.FunctionCount++
			c.Bytecode().addStats(stats)
		}
	}
}
