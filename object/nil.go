package object

// NilType represents the void keyword, the absence of a value. Nil is
// the only instance.
type NilType struct {
	base
}

// Nil is the singleton void value.
var Nil = &NilType{}

func (n *NilType) Type() Type {
	return NIL
}

func (n *NilType) Inspect() string {
	return "NilVal"
}

// IsTruthy is false: a lack of value is never true.
func (n *NilType) IsTruthy() bool {
	return false
}

// Operate supports equality against every value, unlike the IEEE
// convention for NaN: void compares equal to void and nothing else.
func (n *NilType) Operate(op Operator, other Value) Value {
	if op != OpEqual {
		return nil
	}
	_, isNil := other.(*NilType)
	return NewBool(isNil)
}
