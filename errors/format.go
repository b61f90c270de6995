package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Formattable is implemented by diagnostics that can render themselves
// as a rich terminal report.
type Formattable interface {
	ToFormatted() *FormattedError
}

// Formatter renders diagnostics in a compact, caret-annotated style.
type Formatter struct {
	// UseColor enables ANSI colors. Output still honors the fatih/color
	// package-level NoColor override, so piped output stays clean.
	UseColor bool
}

// NewFormatter creates a formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

var (
	headerColor   = color.New(color.FgHiRed, color.Bold)
	messageColor  = color.New(color.FgRed)
	bracketColor  = color.New(color.FgHiBlack)
	locationColor = color.New(color.FgCyan)
	gutterColor   = color.New(color.FgHiBlack)
	sourceColor   = color.New(color.FgWhite)
	caretColor    = color.New(color.FgHiRed)
	hintColor     = color.New(color.FgHiYellow)
	noteColor     = color.New(color.FgHiBlue)
)

// FormattedError is a diagnostic prepared for display.
type FormattedError struct {
	Code        ErrorCode
	Kind        string // "syntax error" or "runtime error"
	Message     string
	Filename    string
	Line        int
	Column      int
	EndColumn   int // for multi-character underlines
	SourceLines []SourceLineEntry
	Hint        string
	Note        string
	Stack       []StackFrame
}

// SourceLineEntry is one line of source context. IsMain marks the line
// the caret points at.
type SourceLineEntry struct {
	Number int
	Text   string
	IsMain bool
}

func (f *Formatter) paint(c *color.Color, s string) string {
	if !f.UseColor {
		return s
	}
	return c.Sprint(s)
}

// Format renders one diagnostic.
func (f *Formatter) Format(err *FormattedError) string {
	return f.FormatWithPrefix(err, "")
}

// FormatWithPrefix renders the diagnostic with a position marker such
// as "2/5" in place of the error code.
func (f *Formatter) FormatWithPrefix(err *FormattedError, prefix string) string {
	var b strings.Builder

	// The gutter holds right-aligned line numbers.
	gutter := 2
	if err.Line >= 100 {
		gutter = len(fmt.Sprintf("%d", err.Line))
	}

	f.writeHeader(&b, err, prefix)
	f.writeLocation(&b, err, gutter)
	f.writeSource(&b, err, gutter)
	if err.Hint != "" {
		f.writeAside(&b, "hint: ", hintColor, err.Hint, gutter, true)
	}
	if err.Note != "" {
		f.writeAside(&b, "note: ", noteColor, err.Note, gutter, false)
	}
	if len(err.Stack) > 0 {
		f.writeStack(&b, err.Stack, gutter)
	}
	return b.String()
}

func (f *Formatter) writeHeader(b *strings.Builder, err *FormattedError, prefix string) {
	label := "error"
	if err.Kind != "" {
		label = err.Kind
	}
	b.WriteString(f.paint(headerColor, label))

	bracket := prefix
	if bracket == "" {
		bracket = string(err.Code)
	}
	if bracket != "" {
		b.WriteString(f.paint(bracketColor, "["+bracket+"]"))
	}

	b.WriteString(f.paint(messageColor, ": "))
	b.WriteString(err.Message)
	b.WriteString("\n")
}

func (f *Formatter) writeLocation(b *strings.Builder, err *FormattedError, gutter int) {
	if err.Line == 0 && err.Filename == "" {
		return
	}
	b.WriteString(strings.Repeat(" ", gutter))
	b.WriteString(f.paint(locationColor, "-->"))
	b.WriteString(" ")

	var loc string
	if err.Filename != "" {
		loc = err.Filename
		if err.Line > 0 {
			loc += fmt.Sprintf(":%d:%d", err.Line, err.Column)
		}
	} else {
		loc = fmt.Sprintf("%d:%d", err.Line, err.Column)
	}
	b.WriteString(f.paint(locationColor, loc))
	b.WriteString("\n")
}

func (f *Formatter) writeSource(b *strings.Builder, err *FormattedError, gutter int) {
	if len(err.SourceLines) == 0 {
		return
	}
	pad := strings.Repeat(" ", gutter)
	b.WriteString(pad)
	b.WriteString(f.paint(gutterColor, " |"))
	b.WriteString("\n")

	for _, line := range err.SourceLines {
		b.WriteString(f.paint(gutterColor, fmt.Sprintf("%*d |", gutter, line.Number)))
		b.WriteString(" ")
		b.WriteString(f.paint(sourceColor, line.Text))
		b.WriteString("\n")

		if line.IsMain && err.Column > 0 {
			b.WriteString(pad)
			b.WriteString(f.paint(gutterColor, " | "))
			b.WriteString(strings.Repeat(" ", err.Column-1))
			width := 1
			if err.EndColumn > err.Column {
				width = err.EndColumn - err.Column + 1
			}
			b.WriteString(f.paint(caretColor, strings.Repeat("^", width)))
			b.WriteString("\n")
		}
	}
}

func (f *Formatter) writeAside(b *strings.Builder, label string, c *color.Color, text string, gutter int, blankBefore bool) {
	pad := strings.Repeat(" ", gutter)
	if blankBefore {
		b.WriteString(pad)
		b.WriteString(f.paint(gutterColor, " |"))
		b.WriteString("\n")
	}
	b.WriteString(pad)
	b.WriteString(f.paint(gutterColor, " = "))
	b.WriteString(f.paint(c, label))
	b.WriteString(text)
	b.WriteString("\n")
}

func (f *Formatter) writeStack(b *strings.Builder, stack []StackFrame, gutter int) {
	pad := strings.Repeat(" ", gutter)
	b.WriteString(pad)
	b.WriteString(f.paint(gutterColor, " |"))
	b.WriteString("\n")
	b.WriteString(pad)
	b.WriteString(f.paint(gutterColor, " = "))
	b.WriteString(f.paint(noteColor, "stack trace:"))
	b.WriteString("\n")
	for _, frame := range stack {
		b.WriteString(pad)
		b.WriteString(f.paint(gutterColor, "     "))
		b.WriteString(frame.String())
		b.WriteString("\n")
	}
}

// FormatMultiple renders a batch of diagnostics, numbering each when
// there is more than one.
func (f *Formatter) FormatMultiple(errs []*FormattedError) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return f.Format(errs[0])
	}

	var b strings.Builder
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.FormatWithPrefix(err, fmt.Sprintf("%d/%d", i+1, len(errs))))
	}
	b.WriteString("\n")
	b.WriteString(f.paint(headerColor, fmt.Sprintf("found %d errors", len(errs))))
	b.WriteString("\n")
	return b.String()
}
