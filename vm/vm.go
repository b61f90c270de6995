// Package vm provides the stack machine that executes compiled PAL
// bytecode.
//
// One VM owns the operand stack, the call frames, and the global
// variable table. Globals persist across runs, which is what makes the
// REPL work: each line compiles to a fresh script function executed on
// the same machine. A VM must not be driven by more than one goroutine
// at a time; Run rejects reentrant use.
//
// # Generators
//
// Generator suspension needs no goroutines. A yield copies the
// suspended frame's stack window and instruction pointer onto the
// generator value; advancing the iterator splices that window back
// onto the shared stack and resumes at the saved pointer. Iterate
// loops are tracked as bindings keyed by the position of their advance
// instruction, so loops nest with themselves and with bounded loops,
// and exhaustion unwinds exactly one loop.
package vm

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/probelab/pal/bytecode"
	"github.com/probelab/pal/compiler"
	"github.com/probelab/pal/errors"
	"github.com/probelab/pal/object"
	"github.com/probelab/pal/op"
)

const (
	MaxFrameDepth = 64
	MaxStackDepth = 1024

	// DefaultContextCheckInterval is the number of instructions between
	// deterministic checks of ctx.Done().
	DefaultContextCheckInterval = 1000
)

// Status is the terminal state of one run.
type Status int

const (
	OK Status = iota
	CompileError
	RuntimeError
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case CompileError:
		return "COMPILE_ERROR"
	case RuntimeError:
		return "RUNTIME_ERROR"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// VM executes compiled PAL functions. Create one with New and reuse it
// freely; the global table carries over between runs.
type VM struct {
	sp       int // next free stack cell
	fp       int // active frame count
	halt     int32
	running  bool
	runMutex sync.Mutex

	globals  map[string]object.Value
	bindings []binding
	lastErr  error

	output        io.Writer
	varListener   VarListener
	actionHandler ActionHandler
	sleepFn       SleepFunc
	observer      Observer

	contextCheckInterval int

	stack  [MaxStackDepth]object.Value
	frames [MaxFrameDepth]frame
}

// New creates a machine with the given options applied.
func New(opts ...Option) *VM {
	vm := &VM{
		globals:              map[string]object.Value{},
		output:               os.Stderr,
		sleepFn:              defaultSleep,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Run executes a compiled script function to completion. The returned
// status reports how the run ended; LastError holds the detail after a
// RuntimeError. Runtime errors are also written to the output sink in
// the language's one-line traceback form.
func (vm *VM) Run(ctx context.Context, fn *bytecode.Function) Status {
	if err := vm.start(); err != nil {
		vm.lastErr = err
		return RuntimeError
	}
	defer vm.stop()

	// Halt execution when the context is cancelled. The stop channel
	// releases the goroutine when the run ends first.
	if doneChan := ctx.Done(); doneChan != nil {
		stopped := make(chan struct{})
		defer close(stopped)
		go func() {
			select {
			case <-doneChan:
				atomic.StoreInt32(&vm.halt, 1)
			case <-stopped:
			}
		}()
	}

	vm.sp = 0
	vm.fp = 0
	vm.bindings = vm.bindings[:0]
	vm.lastErr = nil

	vm.push(object.NewFunction(fn))
	vm.frames[0] = frame{fn: fn, chunk: fn.Chunk(), base: 0, bindingIdx: -1}
	vm.fp = 1

	if err := vm.eval(ctx); err != nil {
		vm.lastErr = err
		fmt.Fprintln(vm.output, err.Error())
		return RuntimeError
	}
	return OK
}

// RunSource compiles and runs source text in one step. Compile errors
// are written to the output sink and reported as CompileError.
func (vm *VM) RunSource(ctx context.Context, source string) Status {
	fn, err := compiler.Compile(source)
	if err != nil {
		vm.lastErr = err
		fmt.Fprintln(vm.output, err.Error())
		return CompileError
	}
	return vm.Run(ctx, fn)
}

// LastError returns the error behind the most recent non-OK status.
func (vm *VM) LastError() error {
	return vm.lastErr
}

// Get returns a global variable by name.
func (vm *VM) Get(name string) (object.Value, bool) {
	value, ok := vm.globals[name]
	return value, ok
}

// GlobalNames returns the names of all defined globals.
func (vm *VM) GlobalNames() []string {
	names := make([]string, 0, len(vm.globals))
	for name := range vm.globals {
		names = append(names, name)
	}
	return names
}

func (vm *VM) start() error {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return fmt.Errorf("machine is already running")
	}
	vm.running = true
	vm.halt = 0
	return nil
}

func (vm *VM) stop() {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	vm.running = false
}

func (vm *VM) push(value object.Value) {
	if vm.sp == MaxStackDepth {
		panic("stack overflow")
	}
	vm.stack[vm.sp] = value
	vm.sp++
}

func (vm *VM) pop() object.Value {
	if vm.sp == 0 {
		panic("stack underflow")
	}
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek() object.Value {
	if vm.sp == 0 {
		panic("stack underflow")
	}
	return vm.stack[vm.sp-1]
}

// frame returns the active frame.
func (vm *VM) frame() *frame {
	return &vm.frames[vm.fp-1]
}

// fetch reads the cell under the frame's instruction pointer and
// advances past it.
func (vm *VM) fetch(f *frame) op.Code {
	cell := f.chunk.At(f.ip)
	f.ip++
	return cell
}

// readName reads a constant pool operand that holds a name string.
func (vm *VM) readName(f *frame) string {
	index := int(vm.fetch(f))
	name, ok := f.chunk.ConstantAt(index).(*object.String)
	if !ok {
		panic(fmt.Sprintf("constant %d is not a name", index))
	}
	return name.Value()
}

// findBinding locates the iteration binding for an advance position in
// the given frame, searching innermost first.
func (vm *VM) findBinding(advancePos, depth int, fn *bytecode.Function) int {
	for i := len(vm.bindings) - 1; i >= 0; i-- {
		b := vm.bindings[i]
		if b.advancePos == advancePos && b.depth == depth && b.fn == fn {
			return i
		}
	}
	return -1
}

// captureFrames snapshots the call stack for a runtime error,
// outermost frame first.
func (vm *VM) captureFrames() []errors.StackFrame {
	captured := make([]errors.StackFrame, 0, vm.fp)
	for i := 0; i < vm.fp; i++ {
		f := &vm.frames[i]
		loc := f.chunk.LocationAt(f.ip - 1)
		captured = append(captured, errors.StackFrame{
			Function: f.fn.Name(),
			Location: errors.SourceLocation{Line: loc.Line, Column: loc.Column},
		})
	}
	return captured
}

func (vm *VM) runtimeError(code errors.ErrorCode, format string, args ...any) *errors.RuntimeError {
	return &errors.RuntimeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Frames:  vm.captureFrames(),
	}
}

// binary applies a binary operator to the top two stack values. The
// left operand is asked first; if it declines, the right operand is
// asked to perform the reversed form.
func (vm *VM) binary(name string, forward, reversed object.Operator) error {
	right := vm.pop()
	left := vm.pop()
	if value := left.Operate(forward, right); value != nil {
		vm.push(value)
		return nil
	}
	if value := right.Operate(reversed, left); value != nil {
		vm.push(value)
		return nil
	}
	return vm.runtimeError(errors.ErrTypeMismatch,
		"Unsupported operands for %s '%s' and '%s'", name, left.Type(), right.Type())
}

func (vm *VM) unhandled(code op.Code) error {
	name := op.GetInfo(code).Name
	if name == "" {
		name = "unknown"
	}
	return vm.runtimeError(errors.ErrInternal,
		"Unhandled OpCode %d (OpCode is %s)", int(code), name)
}

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// eval is the dispatch loop. It runs until the root frame returns, a
// runtime error occurs, or the context is cancelled. Internal panics
// (stack underflow, corrupt bytecode) are recovered into runtime
// errors carrying the frame trace.
func (vm *VM) eval(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = vm.runtimeError(errors.ErrInternal, "Internal fault: %v", r)
		}
	}()

	f := vm.frame()
	doneChan := ctx.Done()
	checkInterval := vm.contextCheckInterval
	instructionCount := 0

	// skipTo, while non-negative, fast-forwards dispatch to the
	// backward jump targeting this offset: the re-entry prologue of an
	// exhausted iterate loop is scanned without executing side effects.
	skipTo := -1

	for {
		if atomic.LoadInt32(&vm.halt) == 1 {
			return vm.runtimeError(errors.ErrInternal, "Execution cancelled")
		}
		if checkInterval > 0 && doneChan != nil {
			instructionCount++
			if instructionCount >= checkInterval {
				instructionCount = 0
				select {
				case <-doneChan:
					atomic.StoreInt32(&vm.halt, 1)
					return vm.runtimeError(errors.ErrInternal, "Execution cancelled")
				default:
				}
			}
		}

		code := vm.fetch(f)

		if skipTo >= 0 {
			info := op.GetInfo(code)
			if info.OperandCount > 0 {
				operand := int(vm.fetch(f))
				if code == op.Loop && f.ip-operand == skipTo {
					skipTo = -1
					// Swallow the scope-end POP for the loop variable:
					// its cell was already dropped at exhaustion.
					vm.fetch(f)
				}
			}
			continue
		}

		if vm.observer != nil {
			event := StepEvent{
				IP:         f.ip - 1,
				Opcode:     code,
				OpcodeName: op.GetInfo(code).Name,
				Location:   f.chunk.LocationAt(f.ip - 1),
				StackDepth: vm.sp,
				FrameDepth: vm.fp,
			}
			if !vm.observer.OnStep(event) {
				return vm.runtimeError(errors.ErrInternal, "Execution halted by observer")
			}
		}

		switch code {

		case op.Constant:
			value := f.chunk.ConstantAt(int(vm.fetch(f))).(object.Value)
			// List literals stay pristine in the pool; each evaluation
			// pushes a fresh copy for DEF_ELEM to fill.
			if array, ok := value.(*object.Array); ok {
				value = array.Copy()
			}
			vm.push(value)

		case op.True:
			vm.push(object.True)

		case op.False:
			vm.push(object.False)

		case op.Null:
			vm.push(object.Nil)

		case op.Negate:
			value := vm.pop()
			result := value.Negate()
			if result == nil {
				return vm.runtimeError(errors.ErrTypeMismatch,
					"%s objects cannot be negated", value.Type())
			}
			vm.push(result)

		case op.Invert:
			value := vm.pop()
			result := value.Invert()
			if result == nil {
				return vm.runtimeError(errors.ErrTypeMismatch,
					"%s objects cannot be inverted", value.Type())
			}
			vm.push(result)

		case op.Power:
			if err := vm.binary("exp", object.OpPower, object.OpRPower); err != nil {
				return err
			}

		case op.Add:
			if err := vm.binary("add", object.OpAdd, object.OpRAdd); err != nil {
				return err
			}

		case op.Sub:
			if err := vm.binary("subtract", object.OpSub, object.OpRSub); err != nil {
				return err
			}

		case op.Mix:
			if err := vm.binary("mix", object.OpMix, object.OpRMix); err != nil {
				return err
			}

		case op.Equal:
			if err := vm.binary("equality", object.OpEqual, object.OpEqual); err != nil {
				return err
			}

		case op.Less:
			if err := vm.binary("less than", object.OpLess, object.OpMore); err != nil {
				return err
			}

		case op.More:
			if err := vm.binary("greater than", object.OpMore, object.OpLess); err != nil {
				return err
			}

		case op.Print:
			fmt.Fprintln(vm.output, vm.peek().Inspect())

		case op.Pop:
			vm.pop()

		case op.DefGlobal:
			name := vm.readName(f)
			vm.globals[name] = vm.pop()

		case op.GetGlobal:
			name := vm.readName(f)
			value, ok := vm.globals[name]
			if !ok {
				e := vm.runtimeError(errors.ErrUndefinedVariable, "Undefined variable %q", name)
				e.Hint = errors.SuggestionHint(errors.SuggestSimilar(name, vm.GlobalNames()))
				return e
			}
			vm.push(value)

		case op.SetGlobal:
			name := vm.readName(f)
			if _, ok := vm.globals[name]; !ok {
				e := vm.runtimeError(errors.ErrUndefinedVariable, "Undefined variable %q", name)
				e.Hint = errors.SuggestionHint(errors.SuggestSimilar(name, vm.GlobalNames()))
				return e
			}
			// Assignment is an expression: the value stays on the stack.
			value := vm.peek()
			vm.globals[name] = value
			if vm.varListener != nil {
				vm.varListener(name, value)
			}

		case op.GetLocal:
			slot := int(vm.fetch(f))
			vm.push(vm.stack[f.base+slot])

		case op.SetLocal:
			slot := int(vm.fetch(f))
			vm.stack[f.base+slot] = vm.peek()

		case op.FalseyJump:
			// The condition is peeked, not popped; both branches of the
			// jump pop it explicitly.
			if !vm.peek().IsTruthy() {
				operand := int(vm.fetch(f))
				f.ip += operand
			} else {
				f.ip++
			}

		case op.AlwaysJump:
			operand := int(vm.fetch(f))
			f.ip += operand

		case op.Loop:
			operand := int(vm.fetch(f))
			f.ip -= operand
			// Jumping back to an iterate loop's advance instruction
			// re-pushes that loop's iterator for the next pull.
			if bi := vm.findBinding(f.ip, vm.fp, f.fn); bi >= 0 {
				vm.push(vm.bindings[bi].iter)
			}

		case op.Call:
			argc := int(vm.fetch(f))
			callee := vm.stack[vm.sp-argc-1]
			switch callee := callee.(type) {
			case *object.Function:
				if argc != callee.Arity() {
					return vm.runtimeError(errors.ErrArityMismatch,
						"%s expected %d arguments, got %d", callee.Inspect(), callee.Arity(), argc)
				}
				if vm.fp == MaxFrameDepth {
					return vm.runtimeError(errors.ErrInternal, "Call depth limit exceeded")
				}
				fn := callee.Bytecode()
				vm.frames[vm.fp] = frame{
					fn:         fn,
					chunk:      fn.Chunk(),
					base:       vm.sp - argc - 1,
					bindingIdx: -1,
				}
				vm.fp++
				f = vm.frame()
				if vm.observer != nil {
					event := CallEvent{
						FunctionName: fn.Name(),
						ArgCount:     argc,
						Location:     f.chunk.LocationAt(0),
						FrameDepth:   vm.fp,
					}
					if !vm.observer.OnCall(event) {
						return vm.runtimeError(errors.ErrInternal, "Execution halted by observer")
					}
				}
			case *object.Generator:
				if argc != callee.Arity() {
					return vm.runtimeError(errors.ErrArityMismatch,
						"%s expected %d arguments, got %d", callee.Inspect(), callee.Arity(), argc)
				}
				// Priming captures the callee-and-arguments window but
				// starts nothing: the first advance builds the frame.
				window := make([]object.Value, argc+1)
				copy(window, vm.stack[vm.sp-argc-1:vm.sp])
				vm.push(callee.Prime(window))
			case *object.NativeFunction:
				args := make([]object.Value, argc)
				copy(args, vm.stack[vm.sp-argc:vm.sp])
				result, err := callee.Call(ctx, args)
				if err != nil {
					return vm.runtimeError(errors.ErrActionFailed, "%s", err.Error())
				}
				if result == nil {
					result = object.Nil
				}
				vm.sp -= argc + 1
				vm.push(result)
			default:
				return vm.runtimeError(errors.ErrNotCallable,
					"'%s' objects aren't callable.", callee.Type())
			}

		case op.Advance:
			advancePos := f.ip - 1
			iterable := vm.pop()
			switch iterable := iterable.(type) {
			case *object.Iterator:
				gen := iterable.Generator()
				bi := vm.findBinding(advancePos, vm.fp, f.fn)
				if bi < 0 {
					vm.bindings = append(vm.bindings, binding{
						advancePos: advancePos,
						depth:      vm.fp,
						fn:         f.fn,
						iter:       iterable,
						base:       vm.sp,
					})
					bi = len(vm.bindings) - 1
				}
				// Splice the saved window back at the loop's base and
				// resume at the saved instruction pointer. On the first
				// advance the window is the primed callee and arguments
				// and the pointer is zero.
				window, ip := gen.Saved()
				vm.sp = vm.bindings[bi].base
				for _, value := range window {
					vm.push(value)
				}
				fn := gen.Bytecode()
				vm.frames[vm.fp] = frame{
					fn:         fn,
					chunk:      fn.Chunk(),
					ip:         ip,
					base:       vm.bindings[bi].base,
					gen:        gen,
					bindingIdx: bi,
				}
				vm.fp++
				f = vm.frame()
			case *object.NativeIterator:
				bi := vm.findBinding(advancePos, vm.fp, f.fn)
				if bi < 0 {
					vm.bindings = append(vm.bindings, binding{
						advancePos: advancePos,
						depth:      vm.fp,
						fn:         f.fn,
						iter:       iterable,
						base:       vm.sp,
					})
					bi = len(vm.bindings) - 1
				}
				b := vm.bindings[bi]
				vm.sp = b.base
				value, ok := iterable.Next()
				if !ok {
					vm.bindings = vm.bindings[:bi]
					skipTo = b.advancePos
				} else {
					vm.push(value)
				}
			default:
				return vm.runtimeError(errors.ErrNotIterable, "Can only iterate over iterables")
			}

		case op.Return:
			result := vm.pop()
			returning := *f
			vm.fp--
			if vm.observer != nil {
				event := ReturnEvent{
					FunctionName: returning.fn.Name(),
					FrameDepth:   vm.fp,
				}
				if !vm.observer.OnReturn(event) {
					return vm.runtimeError(errors.ErrInternal, "Execution halted by observer")
				}
			}
			if vm.fp == 0 {
				vm.pop()
				return nil
			}
			f = vm.frame()
			if returning.gen != nil {
				// The generator ran off its end: the driving loop is
				// exhausted. Unwind to the loop's base and fast-forward
				// past its body.
				b := vm.bindings[returning.bindingIdx]
				vm.sp = b.base
				vm.bindings = vm.bindings[:returning.bindingIdx]
				skipTo = b.advancePos
			} else {
				// Loops the returning function abandoned mid-iteration
				// must not shadow later loops at the same depth.
				vm.dropBindings(vm.fp+1, returning.fn)
				vm.sp = returning.base
				vm.push(result)
			}

		case op.Yield:
			result := vm.pop()
			returning := *f
			vm.fp--
			if vm.fp == 0 {
				panic("yield outside of any call")
			}
			// Freeze the frame onto the generator: its stack window and
			// instruction pointer are all that resuming needs.
			window := make([]object.Value, vm.sp-returning.base)
			copy(window, vm.stack[returning.base:vm.sp])
			returning.gen.Suspend(window, returning.ip)
			vm.sp = returning.base
			vm.push(result)
			f = vm.frame()
			if vm.observer != nil {
				event := ReturnEvent{
					FunctionName: returning.fn.Name(),
					FrameDepth:   vm.fp,
				}
				if !vm.observer.OnReturn(event) {
					return vm.runtimeError(errors.ErrInternal, "Execution halted by observer")
				}
			}

		case op.Sleep:
			value := vm.pop()
			delay, ok := value.(*object.Number)
			if !ok {
				return vm.runtimeError(errors.ErrBadDelay, "%s is not a number.", value.Inspect())
			}
			d := time.Duration(delay.Value() * float64(time.Second))
			if err := vm.sleepFn(ctx, d); err != nil {
				return vm.runtimeError(errors.ErrInternal, "Execution cancelled")
			}

		case op.Enum:
			name := vm.readName(f)
			vm.push(object.NewEnum(name))

		case op.GetField:
			name := vm.readName(f)
			target := vm.peek()
			source, ok := target.(object.FieldSource)
			if !ok {
				return vm.runtimeError(errors.ErrUnknownProperty,
					"Can only read properties from enumerations")
			}
			value, ok := source.GetField(name)
			if !ok {
				return vm.runtimeError(errors.ErrUnknownProperty,
					"%s has no property %q", target.Inspect(), name)
			}
			vm.pop()
			vm.push(value)

		case op.DefField:
			name := vm.readName(f)
			enum, ok := vm.peek().(*object.Enum)
			if !ok {
				return vm.runtimeError(errors.ErrInternal,
					"Member definition target is not an enumeration")
			}
			enum.Define(name)

		case op.DefElem:
			vm.fetch(f) // pool index of the pristine literal; unused
			value := vm.pop()
			array, ok := vm.peek().(*object.Array)
			if !ok {
				return vm.runtimeError(errors.ErrInternal,
					"Element definition target is not a collection")
			}
			array.Append(value)

		case op.Scan, op.Cluster, op.Filter, op.Mark, op.Tighten, op.Search:
			if vm.actionHandler == nil {
				return vm.unhandled(code)
			}
			if err := vm.actionHandler.HandleAction(ctx, actionForOpcode[code]); err != nil {
				return vm.runtimeError(errors.ErrActionFailed, "%s", err.Error())
			}

		default:
			return vm.unhandled(code)
		}
	}
}

// dropBindings removes bindings created by the given function at the
// given depth. Suspended generators keep theirs: their bindings carry
// the generator's own function.
func (vm *VM) dropBindings(depth int, fn *bytecode.Function) {
	kept := vm.bindings[:0]
	for _, b := range vm.bindings {
		if b.depth == depth && b.fn == fn {
			continue
		}
		kept = append(kept, b)
	}
	vm.bindings = kept
}
