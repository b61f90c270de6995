package dis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/probelab/pal/compiler"
	"github.com/probelab/pal/object"
	"github.com/probelab/pal/op"
)

func TestFunctionDisassembly(t *testing.T) {
	previous := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = previous }()

	src := `
func f() {
	var x = 42
	return x + 1
}
`
	fn, err := compiler.Compile(src)
	require.NoError(t, err)

	var target *object.Function
	chunk := fn.Chunk()
	for i := 0; i < chunk.ConstantCount(); i++ {
		if f, ok := chunk.ConstantAt(i).(*object.Function); ok {
			target = f
			break
		}
	}
	require.NotNil(t, target)

	instructions, err := Disassemble(target.Bytecode().Chunk())
	require.NoError(t, err)

	var buf bytes.Buffer
	Print(instructions, &buf)

	expected := strings.TrimSpace(`
+--------+-----------+----------+------+
| OFFSET |  OPCODE   | OPERANDS | INFO |
+--------+-----------+----------+------+
|      0 | CONSTANT  |        0 | 42   |
|      2 | GET_LOCAL |        1 |      |
|      4 | CONSTANT  |        1 | 1    |
|      6 | ADD       |          |      |
|      7 | RETURN    |          |      |
|      8 | NULL      |          |      |
|      9 | RETURN    |          |      |
+--------+-----------+----------+------+
`)
	require.Equal(t, expected+"\n", buf.String())
}

func TestJumpAnnotationsAreAbsolute(t *testing.T) {
	fn, err := compiler.Compile("for (var i = 0, i < 2, i = i + 1) {\ni?\n}\n")
	require.NoError(t, err)

	instructions, err := Disassemble(fn.Chunk())
	require.NoError(t, err)

	for _, instr := range instructions {
		switch instr.Opcode {
		case op.FalseyJump, op.AlwaysJump:
			target := instr.Offset + 2 + int(instr.Operands[0])
			require.Contains(t, instr.Annotation, "-> ")
			require.Less(t, instr.Offset, target)
		case op.Loop:
			target := instr.Offset + 2 - int(instr.Operands[0])
			require.Contains(t, instr.Annotation, "-> ")
			require.Greater(t, instr.Offset, target)
		}
	}
}

func TestDisassembleFunctionWalksNestedFunctions(t *testing.T) {
	previous := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = previous }()

	src := `
func helper() {
	return 1
}
iter stream() {
	return 2
}
`
	fn, err := compiler.Compile(src)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, DisassembleFunction(fn, &buf))

	out := buf.String()
	require.Contains(t, out, "script:")
	require.Contains(t, out, "helper:")
	require.Contains(t, out, "stream:")
	require.Contains(t, out, "DEF_GLOBAL")
}
