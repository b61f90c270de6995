package compiler

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/require"

	"github.com/probelab/pal/bytecode"
	"github.com/probelab/pal/errors"
	"github.com/probelab/pal/object"
	"github.com/probelab/pal/op"
	"github.com/probelab/pal/token"
)

func compileScript(t *testing.T, source string) *bytecode.Function {
	t.Helper()
	fn, err := Compile(source)
	require.NoError(t, err)
	return fn
}

func cells(chunk *bytecode.Chunk) []op.Code {
	out := make([]op.Code, chunk.Len())
	for i := range out {
		out[i] = chunk.At(i)
	}
	return out
}

func TestCompileEmptyScript(t *testing.T) {
	fn := compileScript(t, "")
	require.Equal(t, []op.Code{op.Null, op.Return}, cells(fn.Chunk()))
	require.Equal(t, 0, fn.Chunk().ConstantCount())
	require.Equal(t, 0, fn.Arity())
}

func TestCompileExpressionStatement(t *testing.T) {
	fn := compileScript(t, "5 + 3\n")
	require.Equal(t, []op.Code{
		op.Constant, 0,
		op.Constant, 1,
		op.Add,
		op.Pop,
		op.Null, op.Return,
	}, cells(fn.Chunk()))
	left := fn.Chunk().ConstantAt(0).(*object.Number)
	right := fn.Chunk().ConstantAt(1).(*object.Number)
	require.Equal(t, 5.0, left.Value())
	require.Equal(t, 3.0, right.Value())
}

func TestCompileLeftAssociativity(t *testing.T) {
	fn := compileScript(t, "1 - 2 - 3\n")
	require.Equal(t, []op.Code{
		op.Constant, 0,
		op.Constant, 1,
		op.Sub,
		op.Constant, 2,
		op.Sub,
		op.Pop,
		op.Null, op.Return,
	}, cells(fn.Chunk()))
}

func TestCompilePowerLeftAssociativity(t *testing.T) {
	fn := compileScript(t, "2 ^ 3 ^ 2\n")
	require.Equal(t, []op.Code{
		op.Constant, 0,
		op.Constant, 1,
		op.Power,
		op.Constant, 2,
		op.Power,
		op.Pop,
		op.Null, op.Return,
	}, cells(fn.Chunk()))
}

func TestCompileUnaryBindsTighterThanPower(t *testing.T) {
	fn := compileScript(t, "-2 ^ 2\n")
	require.Equal(t, []op.Code{
		op.Constant, 0,
		op.Negate,
		op.Constant, 1,
		op.Power,
		op.Pop,
		op.Null, op.Return,
	}, cells(fn.Chunk()))
}

func TestCompileComparisonPairs(t *testing.T) {
	tests := []struct {
		source string
		want   []op.Code
	}{
		{"1 == 2\n", []op.Code{op.Constant, 0, op.Constant, 1, op.Equal, op.Pop, op.Null, op.Return}},
		{"1 != 2\n", []op.Code{op.Constant, 0, op.Constant, 1, op.Equal, op.Invert, op.Pop, op.Null, op.Return}},
		{"1 < 2\n", []op.Code{op.Constant, 0, op.Constant, 1, op.Less, op.Pop, op.Null, op.Return}},
		{"1 > 2\n", []op.Code{op.Constant, 0, op.Constant, 1, op.More, op.Pop, op.Null, op.Return}},
		{"1 <= 2\n", []op.Code{op.Constant, 0, op.Constant, 1, op.More, op.Invert, op.Pop, op.Null, op.Return}},
		{"1 >= 2\n", []op.Code{op.Constant, 0, op.Constant, 1, op.Less, op.Invert, op.Pop, op.Null, op.Return}},
		{"!true\n", []op.Code{op.True, op.Invert, op.Pop, op.Null, op.Return}},
		{"1 | 2\n", []op.Code{op.Constant, 0, op.Constant, 1, op.Mix, op.Pop, op.Null, op.Return}},
	}
	for _, tt := range tests {
		fn := compileScript(t, tt.source)
		require.Equal(t, tt.want, cells(fn.Chunk()), "source: %q", tt.source)
	}
}

// The output operator binds at prefix level, so it prints the nearest
// operand before the surrounding expression finishes.
func TestCompileOutputInsideExpression(t *testing.T) {
	fn := compileScript(t, "5 + 3?\n")
	require.Equal(t, []op.Code{
		op.Constant, 0,
		op.Constant, 1,
		op.Print,
		op.Add,
		op.Pop,
		op.Null, op.Return,
	}, cells(fn.Chunk()))
}

func TestCompileLiterals(t *testing.T) {
	fn := compileScript(t, "true\nfalse\nvoid\n")
	require.Equal(t, []op.Code{
		op.True, op.Pop,
		op.False, op.Pop,
		op.Null, op.Pop,
		op.Null, op.Return,
	}, cells(fn.Chunk()))
}

func TestCompileNumberBases(t *testing.T) {
	fn := compileScript(t, "\\xFF\n\\b101\n2.5\n")
	chunk := fn.Chunk()
	require.Equal(t, 255.0, chunk.ConstantAt(0).(*object.Number).Value())
	require.Equal(t, 5.0, chunk.ConstantAt(1).(*object.Number).Value())
	require.Equal(t, 2.5, chunk.ConstantAt(2).(*object.Number).Value())
}

func TestCompileStringAndPath(t *testing.T) {
	fn := compileScript(t, "\"hello\"\n'C:/scans'\n")
	chunk := fn.Chunk()
	require.Equal(t, "hello", chunk.ConstantAt(0).(*object.String).Value())
	require.Equal(t, "C:/scans", chunk.ConstantAt(1).(*object.Path).Value())
}

func TestCompileDomainKeywordLiterals(t *testing.T) {
	fn := compileScript(t, "drift\nEuclidean\n")
	chunk := fn.Chunk()
	require.Equal(t, "drift", chunk.ConstantAt(0).(*object.Correction).Value())
	require.Equal(t, "Euclidean", chunk.ConstantAt(1).(*object.Algorithm).Value())
}

// Global name constants are appended per reference, never deduplicated.
func TestCompileGlobals(t *testing.T) {
	fn := compileScript(t, "var x = 5\nx?\n")
	chunk := fn.Chunk()
	require.Equal(t, []op.Code{
		op.Constant, 1,
		op.DefGlobal, 0,
		op.GetGlobal, 2,
		op.Print,
		op.Pop,
		op.Null, op.Return,
	}, cells(chunk))
	require.Equal(t, 3, chunk.ConstantCount())
	require.Equal(t, "x", chunk.ConstantAt(0).(*object.String).Value())
	require.Equal(t, "x", chunk.ConstantAt(2).(*object.String).Value())
}

func TestCompileGlobalAssignment(t *testing.T) {
	fn := compileScript(t, "var x = 1\nx = 2\n")
	require.Equal(t, []op.Code{
		op.Constant, 1,
		op.DefGlobal, 0,
		op.Constant, 3,
		op.SetGlobal, 2,
		op.Pop,
		op.Null, op.Return,
	}, cells(fn.Chunk()))
}

func TestCompileActionStatements(t *testing.T) {
	fn := compileScript(t, "Scan\nCluster\nfilter\nMark\nTighten\nSearch\n")
	require.Equal(t, []op.Code{
		op.Scan, op.Cluster, op.Filter, op.Mark, op.Tighten, op.Search,
		op.Null, op.Return,
	}, cells(fn.Chunk()))
}

func TestCompileWaitStatement(t *testing.T) {
	fn := compileScript(t, "wait 5\n")
	require.Equal(t, []op.Code{
		op.Constant, 0,
		op.Sleep,
		op.Null, op.Return,
	}, cells(fn.Chunk()))
}

func TestCompileListLiteral(t *testing.T) {
	fn := compileScript(t, "[1, 2]?\n")
	chunk := fn.Chunk()
	require.Equal(t, []op.Code{
		op.Constant, 0,
		op.Constant, 1,
		op.DefElem, 0,
		op.Constant, 2,
		op.DefElem, 0,
		op.Print,
		op.Pop,
		op.Null, op.Return,
	}, cells(chunk))
	require.IsType(t, &object.Array{}, chunk.ConstantAt(0))
}

func TestCompileFieldAccess(t *testing.T) {
	fn := compileScript(t, "x.y?\n")
	chunk := fn.Chunk()
	require.Equal(t, []op.Code{
		op.GetGlobal, 0,
		op.GetField, 1,
		op.Print,
		op.Pop,
		op.Null, op.Return,
	}, cells(chunk))
	require.Equal(t, "y", chunk.ConstantAt(1).(*object.String).Value())
}

func TestCompileCall(t *testing.T) {
	fn := compileScript(t, "f(1, 2)\n")
	require.Equal(t, []op.Code{
		op.GetGlobal, 0,
		op.Constant, 1,
		op.Constant, 2,
		op.Call, 2,
		op.Pop,
		op.Null, op.Return,
	}, cells(fn.Chunk()))
}

func TestCompileTrailingSeparators(t *testing.T) {
	fn := compileScript(t, "f(1, 2,)\n")
	require.Equal(t, []op.Code{
		op.GetGlobal, 0,
		op.Constant, 1,
		op.Constant, 2,
		op.Call, 2,
		op.Pop,
		op.Null, op.Return,
	}, cells(fn.Chunk()))

	fn = compileScript(t, "[1,]\n")
	require.Equal(t, []op.Code{
		op.Constant, 0,
		op.Constant, 1,
		op.DefElem, 0,
		op.Pop,
		op.Null, op.Return,
	}, cells(fn.Chunk()))

	fn = compileScript(t, "func f(a,) {\n}\n")
	inner := fn.Chunk().ConstantAt(1).(*object.Function)
	require.Equal(t, 1, inner.Arity())
}

func TestCompileForLoop(t *testing.T) {
	source := "for (var i = 0, i < 5, i = i + 1) {\n" +
		"i?\n" +
		"}\n"
	fn := compileScript(t, source)
	require.Equal(t, []op.Code{
		op.Constant, 0, // var i = 0, slot 1
		op.GetLocal, 1, // condition: i < 5
		op.Constant, 1,
		op.Less,
		op.FalseyJump, 19, // to the condition pop at offset 28
		op.Pop,
		op.AlwaysJump, 10, // over the increment, to the body at 22
		op.GetLocal, 1, // increment: i = i + 1
		op.Constant, 2,
		op.Add,
		op.SetLocal, 1,
		op.Pop,
		op.Loop, 20, // back to the condition at offset 2
		op.GetLocal, 1, // body: i?
		op.Print,
		op.Pop,
		op.Loop, 16, // back to the increment at offset 12
		op.Pop, // condition left by the exit jump
		op.Pop, // loop variable leaving scope
		op.Null, op.Return,
	}, cells(fn.Chunk()))
}

func TestCompileForeachLoop(t *testing.T) {
	source := "iter g() {\n" +
		"return 1\n" +
		"}\n" +
		"foreach (var v = g()) {\n" +
		"v?\n" +
		"}\n"
	fn := compileScript(t, source)
	require.Equal(t, []op.Code{
		op.Constant, 1, // the generator object
		op.DefGlobal, 0,
		op.GetGlobal, 2, // var v = g()
		op.Call, 0,
		op.Advance,
		op.SetLocal, 1,
		op.GetLocal, 1, // body: v?
		op.Print,
		op.Pop,
		op.Loop, 9, // back to the ADVANCE at offset 8
		op.Pop, // loop variable leaving scope
		op.Null, op.Return,
	}, cells(fn.Chunk()))
}

func TestCompileFunctionDeclaration(t *testing.T) {
	source := "func add(a, b) {\n" +
		"return a + b\n" +
		"}\n"
	fn := compileScript(t, source)
	chunk := fn.Chunk()
	require.Equal(t, []op.Code{
		op.Constant, 1,
		op.DefGlobal, 0,
		op.Null, op.Return,
	}, cells(chunk))

	inner := chunk.ConstantAt(1).(*object.Function)
	require.Equal(t, "add", inner.Name())
	require.Equal(t, 2, inner.Arity())
	require.Equal(t, []op.Code{
		op.GetLocal, 1,
		op.GetLocal, 2,
		op.Add,
		op.Return,
		op.Null, op.Return, // implicit ending after the explicit return
	}, cells(inner.Bytecode().Chunk()))
}

func TestCompileFunctionImplicitReturn(t *testing.T) {
	fn := compileScript(t, "func noop() {\n}\n")
	inner := fn.Chunk().ConstantAt(1).(*object.Function)
	require.Equal(t, []op.Code{op.Null, op.Return}, cells(inner.Bytecode().Chunk()))
}

func TestCompileGeneratorDeclaration(t *testing.T) {
	source := "iter count(n) {\n" +
		"return n\n" +
		"}\n"
	fn := compileScript(t, source)
	inner := fn.Chunk().ConstantAt(1).(*object.Generator)
	require.Equal(t, "count", inner.Name())
	require.Equal(t, 1, inner.Arity())
	// A generator's return compiles to YIELD and its implicit ending is
	// a bare RETURN, which the machine reads as exhaustion.
	require.Equal(t, []op.Code{
		op.GetLocal, 1,
		op.Yield,
		op.Return,
	}, cells(inner.Bytecode().Chunk()))
}

func TestCompileBareReturnValue(t *testing.T) {
	source := "func f() {\n" +
		"return\n" +
		"}\n"
	fn := compileScript(t, source)
	inner := fn.Chunk().ConstantAt(1).(*object.Function)
	require.Equal(t, []op.Code{
		op.Null, op.Return,
		op.Null, op.Return,
	}, cells(inner.Bytecode().Chunk()))
}

func TestCompileEnumDeclaration(t *testing.T) {
	source := "namespace Color {\n" +
		"RED,\n" +
		"GREEN\n" +
		"}\n"
	fn := compileScript(t, source)
	chunk := fn.Chunk()
	require.Equal(t, []op.Code{
		op.Enum, 0,
		op.DefGlobal, 0,
		op.GetGlobal, 1,
		op.DefField, 2,
		op.DefField, 3,
		op.Pop,
		op.Null, op.Return,
	}, cells(chunk))
	require.Equal(t, "Color", chunk.ConstantAt(0).(*object.String).Value())
	require.Equal(t, "RED", chunk.ConstantAt(2).(*object.String).Value())
	require.Equal(t, "GREEN", chunk.ConstantAt(3).(*object.String).Value())
}

func TestCompileEmptyEnumSameLine(t *testing.T) {
	fn := compileScript(t, "namespace Empty { }\n")
	require.Equal(t, []op.Code{
		op.Enum, 0,
		op.DefGlobal, 0,
		op.GetGlobal, 1,
		op.Pop,
		op.Null, op.Return,
	}, cells(fn.Chunk()))
}

func TestCompileLocationRecording(t *testing.T) {
	fn := compileScript(t, "\nScan\n")
	require.Equal(t, bytecode.SourceLocation{Line: 2, Column: 1}, fn.Chunk().LocationAt(0))
}

func TestCompileBlockBraceNeedsOwnLine(t *testing.T) {
	_, err := Compile("func f() { Scan }\n")
	require.Error(t, err)
	require.Contains(t, err.Error(), `Expected a '\n' between statements`)

	// An empty block may close on the opening line.
	_, err = Compile("func f() { }\n")
	require.NoError(t, err)
}

func TestCompileErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "missing statement separator",
			source: "Scan Scan\n",
			want:   `Syntax Error: Expected a '\n' between statements at 1:6`,
		},
		{
			name:   "missing expression",
			source: "var x =\n",
			want:   "Syntax Error: Expected expression at 1:8",
		},
		{
			name:   "expression at end of file",
			source: "\n",
			want:   "Syntax Error: Expected expression at end",
		},
		{
			name:   "unknown keyword expression",
			source: "var x = var\n",
			want:   "Syntax Error: Unknown expression 'PAL_KEYWORD_VAR_DEF' at 1:9",
		},
		{
			name:   "unknown symbol expression",
			source: "}\n",
			want:   "Syntax Error: Unknown expression 'PAL_END_BLOCK' at 1:1",
		},
		{
			name:   "invalid assignment target",
			source: "x.y = 5\n",
			want:   "Syntax Error: Invalid assignment target at 1:5",
		},
		{
			name:   "return outside function",
			source: "return\n",
			want:   "Syntax Error: Can only return from inside functions at 1:1",
		},
		{
			name:   "missing variable name",
			source: "var = 5\n",
			want:   "Syntax Error: Expected variable name at 1:5",
		},
		{
			name:   "missing assignment",
			source: "var x 5\n",
			want:   "Syntax Error: Expected '=' to assign values to variables at 1:7",
		},
		{
			name:   "unterminated string",
			source: "var s = \"abc",
			want:   "Syntax Error: Unterminated string at 1:9",
		},
		{
			name:   "unknown symbol",
			source: "@\n",
			want:   "Syntax Error: Unknown symbol '@' at 1:1",
		},
		{
			name:   "missing loop variable keyword",
			source: "for (i = 0, i < 5, i = i + 1) {\n}\n",
			want:   "Syntax Error: Expected 'var' for the loop variable at 1:6",
		},
		{
			name:   "enum member missing",
			source: "namespace X {\n}\n",
			want:   "Syntax Error: Expected member name at 2:1",
		},
		{
			name:   "function nesting",
			source: "func f() {\nfunc g() { }\n}\n",
			want:   "Syntax Error: Function nesting is not supported at 2:1",
		},
		{
			name:   "generator nesting",
			source: "func f() {\niter g() { }\n}\n",
			want:   "Syntax Error: Generator nesting is not supported at 2:1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.source)
			require.Error(t, err)
			require.EqualError(t, err, tt.want)
		})
	}
}

func TestCompileDuplicateLocal(t *testing.T) {
	source := "for (var i = 0, i < 1, i = i + 1) {\n" +
		"var i = 2\n" +
		"}\n"
	_, err := Compile(source)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Already a variable called 'i' in this scope")
}

func TestCompileSelfReference(t *testing.T) {
	source := "for (var a = 0, a < 1, a = a + 1) {\n" +
		"var b = b\n" +
		"}\n"
	_, err := Compile(source)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Cannot read local variable in its own initializer")
}

// Global redefinition is allowed; shadowing rules apply to locals only.
func TestCompileGlobalRedefinition(t *testing.T) {
	_, err := Compile("var x = 1\nvar x = 2\n")
	require.NoError(t, err)
}

func TestCompileMultipleErrors(t *testing.T) {
	_, err := Compile("var = 1\nreturn 2\n")
	require.Error(t, err)
	require.Contains(t, err.Error(), "2 syntax errors:")
	require.Contains(t, err.Error(), "Expected variable name")
	require.Contains(t, err.Error(), "Can only return from inside functions")
}

func TestCompileWithFilename(t *testing.T) {
	_, err := Compile("var = 1\n", WithFilename("probe.pal"))
	require.Error(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	require.Len(t, merr.Errors, 1)
	cerr, ok := merr.Errors[0].(*errors.CompileError)
	require.True(t, ok)
	require.Equal(t, "probe.pal", cerr.Filename)
	require.Equal(t, "var = 1", cerr.SourceLine)
	require.Equal(t, errors.ErrUnexpectedToken, cerr.Code)
}

func TestCompileUnclosedDelimitersStop(t *testing.T) {
	// Malformed input that never closes its delimiters still terminates
	// with diagnostics.
	for _, source := range []string{
		"f(1",
		"[1",
		"func f(a",
		"namespace X {",
		"func f() {",
	} {
		_, err := Compile(source)
		require.Error(t, err, "source: %q", source)
	}
}

func TestExpressionRuleTablesArePopulated(t *testing.T) {
	require.NotEmpty(t, prefixParsers)
	require.NotEmpty(t, infixParsers)
	for _, kind := range []token.Type{
		token.NUM, token.HEX, token.BIN, token.STRING, token.PATH,
		token.IDENT, token.MINUS, token.BANG, token.LPAREN, token.LBRACKET,
		token.TRUE, token.FALSE, token.VOID,
	} {
		require.Contains(t, prefixParsers, kind, string(kind))
	}
	for kind, entry := range infixParsers {
		require.NotNil(t, entry.parse, string(kind))
		require.Greater(t, entry.prec, precNone, string(kind))
	}
}
