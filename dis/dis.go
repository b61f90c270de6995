// Package dis supports inspection of compiled PAL scripts by
// disassembling their bytecode into a readable table.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/probelab/pal/bytecode"
	"github.com/probelab/pal/internal/table"
	"github.com/probelab/pal/object"
	"github.com/probelab/pal/op"
)

// Instruction represents a single bytecode instruction and its operand.
type Instruction struct {
	Offset     int
	Name       string
	Opcode     op.Code
	Operands   []op.Code
	Annotation string
	Constant   object.Value
}

// Disassemble returns a parsed representation of the given chunk.
func Disassemble(chunk *bytecode.Chunk) ([]Instruction, error) {
	var instructions []Instruction
	offset := 0
	for offset < chunk.Len() {
		code := chunk.At(offset)
		info := op.GetInfo(code)
		if info.Name == "" {
			return nil, fmt.Errorf("unknown opcode %d at offset %d", int(code), offset)
		}
		instr := Instruction{
			Offset: offset,
			Name:   info.Name,
			Opcode: code,
		}
		if info.OperandCount > 0 {
			if offset+1 >= chunk.Len() {
				return nil, fmt.Errorf("truncated operand for %s at offset %d", info.Name, offset)
			}
			operand := chunk.At(offset + 1)
			instr.Operands = []op.Code{operand}
			switch info.Class {
			case op.OperandConstant:
				index := int(operand)
				if index >= chunk.ConstantCount() {
					return nil, fmt.Errorf("constant index out of range: %d", index)
				}
				constant, ok := chunk.ConstantAt(index).(object.Value)
				if !ok {
					return nil, fmt.Errorf("constant %d is not a value", index)
				}
				instr.Constant = constant
				instr.Annotation = constant.Inspect()
			case op.OperandJumpForward:
				instr.Annotation = fmt.Sprintf("-> %04d", offset+2+int(operand))
			case op.OperandJumpBackward:
				instr.Annotation = fmt.Sprintf("-> %04d", offset+2-int(operand))
			}
		}
		instructions = append(instructions, instr)
		offset += 1 + info.OperandCount
	}
	return instructions, nil
}

// Print writes a table rendering of the given instructions.
func Print(instructions []Instruction, writer io.Writer) {
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	magenta := color.New(color.FgMagenta)
	bold := color.New(color.Bold)

	tbl := table.NewTable(writer).
		WithHeader([]string{"OFFSET", "OPCODE", "OPERANDS", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		})
	for _, instr := range instructions {
		info := instr.Annotation
		switch constant := instr.Constant.(type) {
		case *object.Number:
			info = yellow.Sprint(info)
		case *object.String:
			info = green.Sprint(info)
		case *object.Path:
			info = cyan.Sprint(info)
		case *object.Function, *object.Generator:
			info = magenta.Sprint(info)
		case nil:
			// Jump annotations and plain operands stay uncolored.
			_ = constant
		default:
			info = bold.Sprint(info)
		}
		tbl.Append([]string{
			fmt.Sprintf("%d", instr.Offset),
			bold.Sprint(instr.Name),
			formatOperands(instr.Operands),
			info,
		})
	}
	tbl.Render()
}

// Fprint disassembles a chunk and writes its table in one call.
func Fprint(chunk *bytecode.Chunk, writer io.Writer) error {
	instructions, err := Disassemble(chunk)
	if err != nil {
		return err
	}
	Print(instructions, writer)
	return nil
}

// DisassembleFunction writes the table for a compiled function and,
// recursively, for every function or generator in its constant pool.
func DisassembleFunction(fn *bytecode.Function, writer io.Writer) error {
	name := fn.Name()
	if name == "" {
		name = "script"
	}
	fmt.Fprintf(writer, "%s:\n", name)
	if err := Fprint(fn.Chunk(), writer); err != nil {
		return err
	}
	chunk := fn.Chunk()
	for i := 0; i < chunk.ConstantCount(); i++ {
		var nested *bytecode.Function
		switch constant := chunk.ConstantAt(i).(type) {
		case *object.Function:
			nested = constant.Bytecode()
		case *object.Generator:
			nested = constant.Bytecode()
		default:
			continue
		}
		fmt.Fprintln(writer)
		if err := DisassembleFunction(nested, writer); err != nil {
			return err
		}
	}
	return nil
}

func formatOperands(operands []op.Code) string {
	parts := make([]string, len(operands))
	for i, operand := range operands {
		parts[i] = fmt.Sprintf("%d", operand)
	}
	return strings.Join(parts, ", ")
}
