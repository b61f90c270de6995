// Package pal is the embedding surface for the Probe Automation
// Language. It wraps the compiler and the virtual machine behind a
// small API: Compile source into a Program, then Run it against a set
// of host globals and an action handler.
//
// The one-shot functions create fresh machine state per call. For
// REPL-style sessions where globals persist across evaluations, use
// Machine instead.
package pal

import (
	"context"
	"io"

	"github.com/probelab/pal/compiler"
	"github.com/probelab/pal/instrument"
	"github.com/probelab/pal/object"
	"github.com/probelab/pal/vm"
)

// Option configures a compilation or execution.
type Option func(*options)

type options struct {
	globals       map[string]object.Value
	filename      string
	output        io.Writer
	actionHandler vm.ActionHandler
	varListener   vm.VarListener
	observer      vm.Observer
	sleepFn       vm.SleepFunc
}

func collectOptions(opts ...Option) *options {
	o := &options{globals: map[string]object.Value{}}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) compilerOpts() []compiler.Option {
	var opts []compiler.Option
	if o.filename != "" {
		opts = append(opts, compiler.WithFilename(o.filename))
	}
	return opts
}

func (o *options) vmOpts() []vm.Option {
	var opts []vm.Option
	if len(o.globals) > 0 {
		opts = append(opts, vm.WithGlobals(o.globals))
	}
	if o.output != nil {
		opts = append(opts, vm.WithOutput(o.output))
	}
	if o.actionHandler != nil {
		opts = append(opts, vm.WithActionHandler(o.actionHandler))
	}
	if o.varListener != nil {
		opts = append(opts, vm.WithVarListener(o.varListener))
	}
	if o.observer != nil {
		opts = append(opts, vm.WithObserver(o.observer))
	}
	if o.sleepFn != nil {
		opts = append(opts, vm.WithSleepFunc(o.sleepFn))
	}
	return opts
}

// WithGlobals pre-seeds named global values. Additive; on a name
// collision the last value wins.
func WithGlobals(globals map[string]object.Value) Option {
	return func(o *options) {
		for name, value := range globals {
			o.globals[name] = value
		}
	}
}

// WithGlobal pre-seeds a single named global value.
func WithGlobal(name string, value object.Value) Option {
	return func(o *options) {
		o.globals[name] = value
	}
}

// WithFilename sets the name used in diagnostics for the source being
// compiled. The default is "script".
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithOutput sets the sink for the print operator and error reporting.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithActionHandler binds the instrument actions to a host.
func WithActionHandler(handler vm.ActionHandler) Option {
	return func(o *options) {
		o.actionHandler = handler
	}
}

// WithVarListener registers a callback for global reassignments.
func WithVarListener(listener vm.VarListener) Option {
	return func(o *options) {
		o.varListener = listener
	}
}

// WithObserver sets an observer for execution events.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithSleepFunc replaces the delay implementation behind wait.
func WithSleepFunc(sleep vm.SleepFunc) Option {
	return func(o *options) {
		o.sleepFn = sleep
	}
}

// Bench creates a simulated instrument bench and the Option that wires
// its globals, action handler, and settings mirror into an execution.
func Bench(benchOpts instrument.Options) (*instrument.Bench, Option) {
	bench := instrument.New(benchOpts)
	option := func(o *options) {
		for name, value := range bench.Globals() {
			o.globals[name] = value
		}
		o.actionHandler = bench
		o.varListener = bench.VarListener()
	}
	return bench, option
}

// Compile translates source into a Program. The returned Program is
// immutable and may be run any number of times.
func Compile(source string, opts ...Option) (*Program, error) {
	o := collectOptions(opts...)
	fn, err := compiler.Compile(source, o.compilerOpts()...)
	if err != nil {
		return nil, err
	}
	name := o.filename
	if name == "" {
		name = "script"
	}
	return &Program{fn: fn, source: source, sourceName: name}, nil
}

// Run compiles and executes source in one step on a fresh machine.
// The status mirrors what the machine reports; a non-OK status comes
// with the underlying error.
func Run(ctx context.Context, source string, opts ...Option) (vm.Status, error) {
	program, err := Compile(source, opts...)
	if err != nil {
		return vm.CompileError, err
	}
	return RunProgram(ctx, program, opts...)
}

// RunProgram executes a compiled Program on a fresh machine.
func RunProgram(ctx context.Context, program *Program, opts ...Option) (vm.Status, error) {
	o := collectOptions(opts...)
	machine := vm.New(o.vmOpts()...)
	status := machine.Run(ctx, program.fn)
	if status != vm.OK {
		return status, machine.LastError()
	}
	return status, nil
}
