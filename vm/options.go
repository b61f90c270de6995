package vm

import (
	"context"
	"io"
	"time"

	"github.com/probelab/pal/object"
	"github.com/probelab/pal/op"
)

// Action identifies one of the instrument actions a script can trigger.
// The language passes no arguments to actions; the handler reads
// whatever ambient state it mirrors from the machine's globals.
type Action int

const (
	Survey Action = iota
	Segment
	Filter
	Interact
	Manage
	DeepScan
)

var actionNames = map[Action]string{
	Survey:   "survey",
	Segment:  "segment",
	Filter:   "filter",
	Interact: "interact",
	Manage:   "manage",
	DeepScan: "deepscan",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// actionForOpcode maps the six action opcodes onto their Action.
var actionForOpcode = map[op.Code]Action{
	op.Scan:    Survey,
	op.Cluster: Segment,
	op.Filter:  Filter,
	op.Mark:    Interact,
	op.Tighten: Manage,
	op.Search:  DeepScan,
}

// ActionHandler receives the instrument actions executed by a script.
// A machine with no handler reports action opcodes as unhandled.
type ActionHandler interface {
	HandleAction(ctx context.Context, action Action) error
}

// ActionHandlerFunc adapts a function to the ActionHandler interface.
type ActionHandlerFunc func(ctx context.Context, action Action) error

func (f ActionHandlerFunc) HandleAction(ctx context.Context, action Action) error {
	return f(ctx, action)
}

// SleepFunc performs the delay requested by a wait statement. It should
// return early with an error when the context is cancelled.
type SleepFunc func(ctx context.Context, d time.Duration) error

// VarListener is notified after each assignment to a global variable,
// for host-side mirroring. Definitions do not notify; only assignments
// to an existing global do.
type VarListener func(name string, value object.Value)

// Option is a configuration function for a machine.
type Option func(*VM)

// WithGlobals pre-seeds named global values. May be given repeatedly;
// later maps win on name collisions.
func WithGlobals(globals map[string]object.Value) Option {
	return func(vm *VM) {
		for name, value := range globals {
			vm.globals[name] = value
		}
	}
}

// WithOutput sets the sink the print operator writes to. The default
// is standard error.
func WithOutput(w io.Writer) Option {
	return func(vm *VM) {
		vm.output = w
	}
}

// WithVarListener sets the global-assignment notification callback.
func WithVarListener(listener VarListener) Option {
	return func(vm *VM) {
		vm.varListener = listener
	}
}

// WithActionHandler binds the six instrument actions to a host.
func WithActionHandler(handler ActionHandler) Option {
	return func(vm *VM) {
		vm.actionHandler = handler
	}
}

// WithSleepFunc replaces the delay implementation used by wait. Tests
// use this to run scripts with waits instantly.
func WithSleepFunc(sleep SleepFunc) Option {
	return func(vm *VM) {
		vm.sleepFn = sleep
	}
}

// WithObserver sets an observer for execution events. Observer methods
// are called synchronously during execution, so implementations should
// be fast. Returning false from any method halts execution.
func WithObserver(observer Observer) Option {
	return func(vm *VM) {
		vm.observer = observer
	}
}

// WithContextCheckInterval sets how many instructions run between
// deterministic checks of ctx.Done(). Zero disables the deterministic
// check, leaving only the background goroutine.
func WithContextCheckInterval(interval int) Option {
	return func(vm *VM) {
		vm.contextCheckInterval = interval
	}
}
