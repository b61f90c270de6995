package object

// String is a double-quoted text literal. The stored value excludes the
// quotes; Inspect puts them back without any escaping, since the
// language has none.
type String struct {
	base
	value string
}

func (s *String) Type() Type {
	return STRING
}

func (s *String) Value() string {
	return s.value
}

func (s *String) Inspect() string {
	return `"` + s.value + `"`
}

func (s *String) IsTruthy() bool {
	return s.value != ""
}

func (s *String) Operate(op Operator, other Value) Value {
	str, ok := other.(*String)
	if !ok {
		return nil
	}
	switch op {
	case OpAdd:
		return NewString(s.value + str.value)
	case OpEqual:
		return NewBool(s.value == str.value)
	}
	return nil
}

// NewString returns a String holding the given text.
func NewString(value string) *String {
	return &String{value: value}
}
