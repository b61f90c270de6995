package object

import "fmt"

// Enum is a namespace declaration: an ordered set of member names, each
// reading as its declaration index.
type Enum struct {
	base
	name    string
	members []string
}

func (e *Enum) Type() Type {
	return ENUM
}

func (e *Enum) Name() string {
	return e.name
}

func (e *Enum) Inspect() string {
	return fmt.Sprintf("<Enum %q>", e.name)
}

// Define appends a member. Members read back as their declaration
// order, starting from zero.
func (e *Enum) Define(member string) {
	e.members = append(e.members, member)
}

func (e *Enum) GetField(name string) (Value, bool) {
	for i, member := range e.members {
		if member == name {
			return NewNumber(float64(i)), true
		}
	}
	return nil, false
}

// NewEnum returns an empty enumeration with the given name.
func NewEnum(name string) *Enum {
	return &Enum{name: name}
}
