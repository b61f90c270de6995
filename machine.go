package pal

import (
	"context"
	"sort"

	"github.com/probelab/pal/compiler"
	"github.com/probelab/pal/object"
	"github.com/probelab/pal/vm"
)

// Machine provides stateful execution for REPL and incremental
// evaluation. Unlike Run, which creates fresh state per call, a
// Machine keeps one underlying VM so globals defined in earlier
// evaluations stay visible to later ones.
type Machine struct {
	machine *vm.VM
	opts    *options
}

// NewMachine creates a stateful machine with the given options.
func NewMachine(opts ...Option) *Machine {
	o := collectOptions(opts...)
	return &Machine{
		machine: vm.New(o.vmOpts()...),
		opts:    o,
	}
}

// Eval compiles and runs one source fragment. Definitions persist, so
// a later fragment can reference variables and functions from an
// earlier one.
func (m *Machine) Eval(ctx context.Context, source string) (vm.Status, error) {
	fn, err := compiler.Compile(source, m.opts.compilerOpts()...)
	if err != nil {
		return vm.CompileError, err
	}
	status := m.machine.Run(ctx, fn)
	if status != vm.OK {
		return status, m.machine.LastError()
	}
	return status, nil
}

// Run executes a compiled Program within this machine's context.
func (m *Machine) Run(ctx context.Context, program *Program) (vm.Status, error) {
	status := m.machine.Run(ctx, program.fn)
	if status != vm.OK {
		return status, m.machine.LastError()
	}
	return status, nil
}

// Get returns a global variable by name.
func (m *Machine) Get(name string) (object.Value, bool) {
	return m.machine.Get(name)
}

// GlobalNames returns the sorted names of all defined globals.
func (m *Machine) GlobalNames() []string {
	names := m.machine.GlobalNames()
	sort.Strings(names)
	return names
}
