package vm

import (
	"github.com/probelab/pal/bytecode"
	"github.com/probelab/pal/op"
)

// Observer receives callbacks for machine execution events. It enables
// profilers, tracers, and debuggers without modifying the dispatch
// loop. All methods return whether execution should continue.
//
// Embed NoOpObserver to implement only the methods you need.
type Observer interface {
	// OnStep is called before each instruction is executed.
	OnStep(event StepEvent) bool

	// OnCall is called when a script function is invoked.
	OnCall(event CallEvent) bool

	// OnReturn is called when a script function returns or yields.
	OnReturn(event ReturnEvent) bool
}

// StepEvent describes a single instruction step.
type StepEvent struct {
	// IP is the offset of the instruction in its chunk.
	IP int

	// Opcode is the operation about to execute.
	Opcode op.Code

	// OpcodeName is the display name of the opcode.
	OpcodeName string

	// Location is the source location of the instruction.
	Location bytecode.SourceLocation

	// StackDepth is the current operand stack depth.
	StackDepth int

	// FrameDepth is the current call stack depth.
	FrameDepth int
}

// CallEvent describes a function call.
type CallEvent struct {
	// FunctionName is the name of the function being called.
	FunctionName string

	// ArgCount is the number of arguments passed.
	ArgCount int

	// Location is the source location of the call site.
	Location bytecode.SourceLocation

	// FrameDepth is the call stack depth after the call.
	FrameDepth int
}

// ReturnEvent describes a function return or yield.
type ReturnEvent struct {
	// FunctionName is the name of the function returning.
	FunctionName string

	// FrameDepth is the call stack depth after returning.
	FrameDepth int
}

// NoOpObserver is an Observer that does nothing. Embed it to provide
// defaults for events you do not care about.
type NoOpObserver struct{}

func (NoOpObserver) OnStep(StepEvent) bool     { return true }
func (NoOpObserver) OnCall(CallEvent) bool     { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool { return true }

var _ Observer = NoOpObserver{}
