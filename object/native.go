package object

import (
	"context"
	"fmt"
)

// NativeFunctionFn is the signature of host functions callable from
// scripts.
type NativeFunctionFn func(ctx context.Context, args []Value) (Value, error)

// NativeFunction exposes a host function to scripts. Unlike Function
// values, calling one never pushes a frame: the VM hands over the
// argument window and pushes the result.
type NativeFunction struct {
	base
	name string
	fn   NativeFunctionFn
}

func (f *NativeFunction) Type() Type {
	return BUILTIN
}

func (f *NativeFunction) Name() string {
	return f.name
}

func (f *NativeFunction) Inspect() string {
	return fmt.Sprintf("<Native Function %q>", f.name)
}

func (f *NativeFunction) Call(ctx context.Context, args []Value) (Value, error) {
	return f.fn(ctx, args)
}

// NewNativeFunction exposes fn to scripts under the given name.
func NewNativeFunction(name string, fn NativeFunctionFn) *NativeFunction {
	return &NativeFunction{name: name, fn: fn}
}

// NativeIteratorFn yields the next value, reporting false when the
// sequence is exhausted.
type NativeIteratorFn func() (Value, bool)

// NativeIterator drives an iterate loop from a host sequence. The VM
// pulls one value per pass directly, with no generator frame involved.
type NativeIterator struct {
	base
	name string
	next NativeIteratorFn
}

func (it *NativeIterator) Type() Type {
	return BUILTIN_ITER
}

func (it *NativeIterator) Name() string {
	return it.name
}

func (it *NativeIterator) Inspect() string {
	return fmt.Sprintf("<Native Iterator %q>", it.name)
}

func (it *NativeIterator) Next() (Value, bool) {
	return it.next()
}

// NewNativeIterator exposes a host sequence to iterate loops.
func NewNativeIterator(name string, next NativeIteratorFn) *NativeIterator {
	return &NativeIterator{name: name, next: next}
}

// NativeEnum exposes a host enumeration. Members read as whatever
// values the host assigned, not necessarily declaration indices.
type NativeEnum struct {
	base
	name    string
	members map[string]float64
}

func (e *NativeEnum) Type() Type {
	return BUILTIN_ENUM
}

func (e *NativeEnum) Name() string {
	return e.name
}

func (e *NativeEnum) Inspect() string {
	return fmt.Sprintf("<Native Enum %q>", e.name)
}

func (e *NativeEnum) GetField(name string) (Value, bool) {
	value, ok := e.members[name]
	if !ok {
		return nil, false
	}
	return NewNumber(value), true
}

// NewNativeEnum exposes a host enumeration with explicit member values.
func NewNativeEnum(name string, members map[string]float64) *NativeEnum {
	return &NativeEnum{name: name, members: members}
}

// NativeObject carries a host value through a script. Scripts can
// store and pass it around; hosts may expose named fields for reading.
type NativeObject struct {
	base
	name   string
	value  interface{}
	fields map[string]Value
}

func (o *NativeObject) Type() Type {
	return BUILTIN_OBJ
}

func (o *NativeObject) Name() string {
	return o.name
}

func (o *NativeObject) Inspect() string {
	return fmt.Sprintf("<Native Object %q>", o.name)
}

func (o *NativeObject) Value() interface{} {
	return o.value
}

func (o *NativeObject) GetField(name string) (Value, bool) {
	value, ok := o.fields[name]
	return value, ok
}

// SetField exposes a readable field on the object. Scripts read it
// with member access; writes stay host-side.
func (o *NativeObject) SetField(name string, value Value) {
	if o.fields == nil {
		o.fields = map[string]Value{}
	}
	o.fields[name] = value
}

// NewNativeObject wraps a host value for scripts to carry around.
func NewNativeObject(name string, value interface{}) *NativeObject {
	return &NativeObject{name: name, value: value}
}
