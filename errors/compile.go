package errors

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// MaxReported caps how many compile errors are kept in detail. The
// compiler's panic mode already suppresses most cascades; the cap
// guards against pathological input.
const MaxReported = 10

// CompileError is a single diagnostic from the scanner or compiler.
type CompileError struct {
	Code       ErrorCode
	Message    string
	Filename   string
	Line       int
	Column     int
	AtEnd      bool
	SourceLine string
	Hint       string
}

// Error renders the diagnostic in the language's one-line form:
//
//	Syntax Error: Expected expression at 3:7
//
// Diagnostics reported at end of input read "at end" instead of a
// position.
func (e *CompileError) Error() string {
	if e.AtEnd {
		return fmt.Sprintf("Syntax Error: %s at end", e.Message)
	}
	return fmt.Sprintf("Syntax Error: %s at %d:%d", e.Message, e.Line, e.Column)
}

// Location returns the position of the diagnostic.
func (e *CompileError) Location() SourceLocation {
	return SourceLocation{Filename: e.Filename, Line: e.Line, Column: e.Column}
}

// ToFormatted prepares the diagnostic for terminal display.
func (e *CompileError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:     e.Code,
		Kind:     "syntax error",
		Message:  e.Message,
		Filename: e.Filename,
		Line:     e.Line,
		Column:   e.Column,
		Hint:     e.Hint,
	}
	if e.SourceLine != "" {
		fe.SourceLines = []SourceLineEntry{{Number: e.Line, Text: e.SourceLine, IsMain: true}}
	}
	return fe
}

// CompileErrors collects every diagnostic from one compilation. The
// compiler recovers and keeps scanning after an error, so a single run
// can surface several.
type CompileErrors struct {
	Errors []*CompileError

	total int
}

// Add records a diagnostic. Details beyond MaxReported are dropped but
// still counted.
func (c *CompileErrors) Add(err *CompileError) {
	c.total++
	if len(c.Errors) < MaxReported {
		c.Errors = append(c.Errors, err)
	}
}

// Count returns how many diagnostics were recorded, including any
// dropped past the reporting cap.
func (c *CompileErrors) Count() int {
	return c.total
}

func (c *CompileErrors) HasErrors() bool {
	return c.total > 0
}

// AttachSource fills in the filename and source line of every recorded
// diagnostic so terminal output can show context. Diagnostics at end of
// input point one line past the source and keep an empty source line.
func (c *CompileErrors) AttachSource(filename, source string) {
	lines := strings.Split(source, "\n")
	for _, err := range c.Errors {
		err.Filename = filename
		if err.Line >= 1 && err.Line <= len(lines) {
			err.SourceLine = lines[err.Line-1]
		}
	}
}

// ToError merges the collected diagnostics into one error, or nil when
// compilation was clean. A single diagnostic keeps its exact one-line
// rendering.
func (c *CompileErrors) ToError() error {
	if c.total == 0 {
		return nil
	}
	merged := &multierror.Error{ErrorFormat: c.format}
	for _, err := range c.Errors {
		merged = multierror.Append(merged, err)
	}
	return merged.ErrorOrNil()
}

func (c *CompileErrors) format(errs []error) string {
	if len(errs) == 1 && c.total == 1 {
		return errs[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d syntax errors:", c.total)
	for _, err := range errs {
		b.WriteString("\n")
		b.WriteString(err.Error())
	}
	if dropped := c.total - len(errs); dropped > 0 {
		fmt.Fprintf(&b, "\n(and %d more errors)", dropped)
	}
	return b.String()
}
