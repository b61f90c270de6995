// Package table renders small text tables with ASCII borders. Cell
// content may contain ANSI color codes; widths are measured on the
// visible text so colored cells do not break alignment.
package table

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Alignment controls how cell content is padded within its column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

// visibleWidth returns the width of s with ANSI escapes stripped.
func visibleWidth(s string) int {
	return len([]rune(ansiPattern.ReplaceAllString(s, "")))
}

// Table accumulates rows and renders them in one pass.
type Table struct {
	out              io.Writer
	header           []string
	rows             [][]string
	columnAlignments []Alignment
	headerAlignments []Alignment
}

// NewTable creates a table that renders to w.
func NewTable(w io.Writer) *Table {
	return &Table{out: w}
}

// WithHeader sets the header row.
func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

// WithColumnAlignment sets the per-column alignment of body rows.
// Unspecified columns align left.
func (t *Table) WithColumnAlignment(alignments []Alignment) *Table {
	t.columnAlignments = alignments
	return t
}

// WithHeaderAlignment sets the per-column alignment of the header row.
// Unspecified columns align center.
func (t *Table) WithHeaderAlignment(alignments []Alignment) *Table {
	t.headerAlignments = alignments
	return t
}

// Append adds one body row.
func (t *Table) Append(row []string) *Table {
	t.rows = append(t.rows, row)
	return t
}

func (t *Table) columnCount() int {
	count := len(t.header)
	for _, row := range t.rows {
		if len(row) > count {
			count = len(row)
		}
	}
	return count
}

func (t *Table) columnWidths() []int {
	widths := make([]int, t.columnCount())
	measure := func(row []string) {
		for i, cell := range row {
			if w := visibleWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func alignmentAt(alignments []Alignment, i int, fallback Alignment) Alignment {
	if i < len(alignments) {
		return alignments[i]
	}
	return fallback
}

// pad fits s into width according to the alignment. Padding is
// computed from the visible width, so ANSI codes cost nothing.
func pad(s string, width int, alignment Alignment) string {
	gap := width - visibleWidth(s)
	if gap <= 0 {
		return s
	}
	switch alignment {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

func (t *Table) writeSeparator(widths []int) {
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = strings.Repeat("-", width+2)
	}
	fmt.Fprintf(t.out, "+%s+\n", strings.Join(parts, "+"))
}

func (t *Table) writeRow(row []string, widths []int, alignments []Alignment, fallback Alignment) {
	cells := make([]string, len(widths))
	for i, width := range widths {
		var content string
		if i < len(row) {
			content = row[i]
		}
		cells[i] = " " + pad(content, width, alignmentAt(alignments, i, fallback)) + " "
	}
	fmt.Fprintf(t.out, "|%s|\n", strings.Join(cells, "|"))
}

// Render writes the table. A table with a header renders the header
// between separators; body rows follow, closed by a final separator.
func (t *Table) Render() {
	widths := t.columnWidths()
	if len(widths) == 0 {
		return
	}
	t.writeSeparator(widths)
	if len(t.header) > 0 {
		t.writeRow(t.header, widths, t.headerAlignments, AlignCenter)
		t.writeSeparator(widths)
	}
	for _, row := range t.rows {
		t.writeRow(row, widths, t.columnAlignments, AlignLeft)
	}
	t.writeSeparator(widths)
}
