// Package errors defines the diagnostic types shared by the scanner,
// compiler, and virtual machine, plus terminal formatting for the
// command line front end.
//
// Every diagnostic has two renderings. Error() produces the one-line
// form the language has always printed ("Syntax Error: ..." and
// "RunTimeError on ..."), which embedders and tests match against.
// ToFormatted() produces a multi-line report with source context for
// interactive use.
package errors

import (
	"fmt"
	"strings"
)

// SourceLocation is a position in a script. Lines and columns are
// 1-based; column 0 marks a position past the end of input.
type SourceLocation struct {
	Filename string
	Line     int
	Column   int
}

func (l SourceLocation) String() string {
	if l.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", l.Filename, l.Line, l.Column)
	}
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// IsZero reports whether the location carries no position. A filename
// alone does not count.
func (l SourceLocation) IsZero() bool {
	return l.Line == 0 && l.Column == 0
}

// StackFrame is one call frame captured when the virtual machine
// stops. Function is empty for the top level script.
type StackFrame struct {
	Function string
	Location SourceLocation
}

// String renders the frame for a stack trace listing.
func (f StackFrame) String() string {
	if f.Function == "" {
		return fmt.Sprintf("at %s", f.Location)
	}
	return fmt.Sprintf("at %s (%s)", f.Function, f.Location)
}

// Traceback renders the frame for the interpreter's one-line error
// format: [line N in "name"]. The top level script is named "script".
func (f StackFrame) Traceback() string {
	name := f.Function
	if name == "" {
		name = "script"
	}
	return fmt.Sprintf("[line %d in %q]", f.Location.Line, name)
}

// RuntimeError is reported when the virtual machine stops a script.
// Frames are ordered outermost first, so the trace reads top to bottom
// like the execution did.
type RuntimeError struct {
	Code    ErrorCode
	Message string
	Frames  []StackFrame
	Hint    string
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString("RunTimeError on ")
	for i, frame := range e.Frames {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(frame.Traceback())
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Location returns the innermost frame's location.
func (e *RuntimeError) Location() SourceLocation {
	if len(e.Frames) == 0 {
		return SourceLocation{}
	}
	return e.Frames[len(e.Frames)-1].Location
}

// ToFormatted prepares the error for terminal display.
func (e *RuntimeError) ToFormatted() *FormattedError {
	loc := e.Location()
	fe := &FormattedError{
		Code:     e.Code,
		Kind:     "runtime error",
		Message:  e.Message,
		Filename: loc.Filename,
		Line:     loc.Line,
		Column:   loc.Column,
		Hint:     e.Hint,
	}
	if len(e.Frames) > 1 {
		fe.Stack = e.Frames
	}
	return fe
}
