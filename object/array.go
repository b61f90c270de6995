package object

import "strings"

// Array is an ordered, heterogeneous collection built by list literals.
type Array struct {
	base
	items []Value
}

func (a *Array) Type() Type {
	return ARRAY
}

func (a *Array) Value() []Value {
	return a.items
}

func (a *Array) Inspect() string {
	parts := make([]string, len(a.items))
	for i, item := range a.items {
		parts[i] = item.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (a *Array) IsTruthy() bool {
	return len(a.items) > 0
}

// Append adds one element. List literals are assembled this way from
// bytecode, one element per instruction.
func (a *Array) Append(item Value) {
	a.items = append(a.items, item)
}

// Copy returns a new Array sharing no top-level state with the
// receiver. The constant pool holds a pristine Array per list literal
// and the VM pushes a copy each evaluation.
func (a *Array) Copy() *Array {
	items := make([]Value, len(a.items))
	copy(items, a.items)
	return &Array{items: items}
}

// Invert reverses the collection, returning a new Array.
func (a *Array) Invert() Value {
	items := make([]Value, len(a.items))
	for i, item := range a.items {
		items[len(items)-1-i] = item
	}
	return &Array{items: items}
}

func (a *Array) Operate(op Operator, other Value) Value {
	arr, ok := other.(*Array)
	if !ok {
		return nil
	}
	switch op {
	case OpMix:
		items := make([]Value, 0, len(a.items)+len(arr.items))
		items = append(items, a.items...)
		items = append(items, arr.items...)
		return &Array{items: items}
	case OpEqual:
		if len(a.items) != len(arr.items) {
			return False
		}
		for i, item := range a.items {
			eq := item.Operate(OpEqual, arr.items[i])
			if eq == nil || !eq.IsTruthy() {
				return False
			}
		}
		return True
	}
	return nil
}

// NewArray returns an Array of the given elements.
func NewArray(items ...Value) *Array {
	return &Array{items: items}
}
