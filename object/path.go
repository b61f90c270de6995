package object

// Path is a single-quoted filesystem location. Paths carry no
// operators; they exist to be handed to instrument actions.
type Path struct {
	base
	value string
}

func (p *Path) Type() Type {
	return PATH
}

func (p *Path) Value() string {
	return p.value
}

func (p *Path) Inspect() string {
	return "'" + p.value + "'"
}

// NewPath returns a Path holding the given location.
func NewPath(value string) *Path {
	return &Path{value: value}
}
