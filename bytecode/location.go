package bytecode

import "fmt"

// SourceLocation is a position in source code. Only line and column are
// stored; the source text itself lives with the Program that owns the
// compiled code.
type SourceLocation struct {
	Line   int // 1-based line number
	Column int // 1-based column number
}

// String returns the location as "line:column".
func (s SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}
