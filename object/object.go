// Package object defines the runtime values manipulated by PAL programs.
//
// Every value that can appear on the VM's operand stack implements the
// Value interface. Binary operators are resolved dynamically: the VM asks
// the left operand to perform the operation and, if it declines, asks the
// right operand to perform the reversed form. A nil return from Negate,
// Invert, or Operate signals that the value does not support the
// operation, and the VM turns that into a runtime error.
package object

// Type identifies the runtime type of a value. The constant strings are
// the names scripts see in error messages.
type Type string

const (
	NUMBER       Type = "Num"
	BOOL         Type = "Boolean"
	NIL          Type = "None"
	STRING       Type = "Str"
	PATH         Type = "Path"
	CORRECTION   Type = "Correction"
	ALGORITHM    Type = "Algorithm"
	ARRAY        Type = "Collection"
	FUNCTION     Type = "FnObj"
	GENERATOR    Type = "Generator"
	ITERATOR     Type = "Iter"
	ENUM         Type = "Enumeration"
	BUILTIN      Type = "BuiltinFn"
	BUILTIN_ITER Type = "BuiltinIter"
	BUILTIN_ENUM Type = "BuiltinEnum"
	BUILTIN_OBJ  Type = "BuiltinObj"
)

// Operator selects the binary operation passed to Value.Operate. The R
// variants are the reversed forms tried on the right operand after the
// left operand declines.
type Operator int

const (
	OpPower Operator = iota
	OpRPower
	OpAdd
	OpRAdd
	OpSub
	OpRSub
	OpMix
	OpRMix
	OpEqual
	OpLess
	OpMore
)

// Value is implemented by every PAL runtime value.
type Value interface {

	// Type returns the runtime type name.
	Type() Type

	// Inspect returns the printable representation, as produced by the
	// `?` operator.
	Inspect() string

	// IsTruthy reports whether the value counts as true in conditions.
	IsTruthy() bool

	// Negate returns the arithmetic negation, or nil if unsupported.
	Negate() Value

	// Invert returns the logical inversion, or nil if unsupported.
	Invert() Value

	// Operate applies a binary operator with this value on the
	// forward side, or nil if the combination is unsupported.
	Operate(op Operator, other Value) Value
}

// FieldSource is implemented by values whose members can be read with
// the dot operator.
type FieldSource interface {
	Value

	// GetField resolves a member name to its value.
	GetField(name string) (Value, bool)
}

// base supplies the defaults shared by every value: truthy, with no
// unary or binary operators.
type base struct{}

func (base) IsTruthy() bool {
	return true
}

func (base) Negate() Value {
	return nil
}

func (base) Invert() Value {
	return nil
}

func (base) Operate(op Operator, other Value) Value {
	return nil
}
