package main

import (
	"io"

	"github.com/probelab/pal"
	"github.com/probelab/pal/dis"
)

// disassemble compiles the source and prints one instruction table per
// function, nested functions included.
func disassemble(source, name string, w io.Writer) error {
	program, err := pal.Compile(source, pal.WithFilename(name))
	if err != nil {
		return err
	}
	return dis.DisassembleFunction(program.Fn(), w)
}
