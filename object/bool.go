package object

// Bool represents the two keyword literals true and false, which
// scripts print as "on" and "off".
type Bool struct {
	base
	value bool
}

// True and False are the only two Bool values.
var (
	True  = &Bool{value: true}
	False = &Bool{value: false}
)

func (b *Bool) Type() Type {
	return BOOL
}

func (b *Bool) Value() bool {
	return b.value
}

func (b *Bool) Inspect() string {
	if b.value {
		return "on"
	}
	return "off"
}

func (b *Bool) IsTruthy() bool {
	return b.value
}

func (b *Bool) Invert() Value {
	return NewBool(!b.value)
}

func (b *Bool) Operate(op Operator, other Value) Value {
	if op != OpEqual {
		return nil
	}
	switch other := other.(type) {
	case *Bool:
		return NewBool(b.value == other.value)
	case *Number:
		// Booleans compare to numbers as 1 and 0.
		n := 0.0
		if b.value {
			n = 1.0
		}
		return NewBool(n == other.value)
	}
	return nil
}

// NewBool returns the shared Bool for the given condition.
func NewBool(value bool) *Bool {
	if value {
		return True
	}
	return False
}
