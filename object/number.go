package object

import (
	"math"
	"strconv"
)

// Number is the only numeric type. All three literal bases (denary,
// hexadecimal, binary) produce a Number.
type Number struct {
	base
	value float64
}

func (n *Number) Type() Type {
	return NUMBER
}

func (n *Number) Value() float64 {
	return n.value
}

// IsInt reports whether the value is a whole number. The power and mix
// operators are only defined for whole operands.
func (n *Number) IsInt() bool {
	return n.value == float64(int64(n.value))
}

func (n *Number) Inspect() string {
	return strconv.FormatFloat(n.value, 'f', -1, 64)
}

func (n *Number) IsTruthy() bool {
	return n.value != 0
}

func (n *Number) Negate() Value {
	return NewNumber(-n.value)
}

func (n *Number) Operate(op Operator, other Value) Value {
	num, ok := other.(*Number)
	if !ok {
		return nil
	}
	switch op {
	case OpPower:
		// x^y reads "x times ten to the y", so 5^-9 is five nano-units.
		if !num.IsInt() {
			return nil
		}
		return NewNumber(n.value * math.Pow(10, num.value))
	case OpAdd:
		return NewNumber(n.value + num.value)
	case OpSub:
		return NewNumber(n.value - num.value)
	case OpMix:
		if !n.IsInt() || !num.IsInt() {
			return nil
		}
		return NewNumber(float64(int64(n.value) | int64(num.value)))
	case OpEqual:
		return NewBool(n.value == num.value)
	case OpLess:
		return NewBool(n.value < num.value)
	case OpMore:
		return NewBool(n.value > num.value)
	}
	return nil
}

// NewNumber returns a Number holding the given value.
func NewNumber(value float64) *Number {
	return &Number{value: value}
}
