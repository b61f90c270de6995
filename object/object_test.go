package object_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probelab/pal/bytecode"
	"github.com/probelab/pal/object"
)

func TestInspect(t *testing.T) {
	script := object.NewFunction(bytecode.NewFunction("", 0, bytecode.NewChunk()))
	named := object.NewFunction(bytecode.NewFunction("move", 2, bytecode.NewChunk()))
	gen := object.NewGenerator(bytecode.NewFunction("snake", 0, bytecode.NewChunk()))
	it := gen.Prime([]object.Value{gen})

	tests := []struct {
		value object.Value
		want  string
	}{
		{object.NewNumber(3), "3"},
		{object.NewNumber(0.5), "0.5"},
		{object.NewNumber(-12.25), "-12.25"},
		{object.True, "on"},
		{object.False, "off"},
		{object.Nil, "NilVal"},
		{object.NewString("grid"), `"grid"`},
		{object.NewString(""), `""`},
		{object.NewPath("C:/scans/out.tif"), "'C:/scans/out.tif'"},
		{object.NewCorrection("drift"), "drift"},
		{object.NewAlgorithm("Euclidean"), "Euclidean"},
		{object.NewArray(object.NewNumber(1), object.NewString("a")), `[1, "a"]`},
		{object.NewArray(), "[]"},
		{script, "<Script>"},
		{named, `<Function "move">`},
		{gen, `<Un-Primed Iterator "snake">`},
		{it, `<Primed Iterator "snake">`},
		{object.NewEnum("Direction"), `<Enum "Direction">`},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.value.Inspect())
	}
}

func TestTypeNames(t *testing.T) {
	tests := []struct {
		value object.Value
		want  object.Type
	}{
		{object.NewNumber(1), "Num"},
		{object.True, "Boolean"},
		{object.Nil, "None"},
		{object.NewString("x"), "Str"},
		{object.NewPath("x"), "Path"},
		{object.NewCorrection("focus"), "Correction"},
		{object.NewAlgorithm("Manhattan"), "Algorithm"},
		{object.NewArray(), "Collection"},
		{object.NewFunction(bytecode.NewFunction("f", 0, bytecode.NewChunk())), "FnObj"},
		{object.NewGenerator(bytecode.NewFunction("g", 0, bytecode.NewChunk())), "Generator"},
		{object.NewEnum("E"), "Enumeration"},
		{object.NewNativeFunction("blur", nil), "BuiltinFn"},
		{object.NewNativeIterator("stage", nil), "BuiltinIter"},
		{object.NewNativeEnum("Channel", nil), "BuiltinEnum"},
		{object.NewNativeObject("settings", nil), "BuiltinObj"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.value.Type())
	}
}

func TestTruthiness(t *testing.T) {
	require.True(t, object.NewNumber(1).IsTruthy())
	require.True(t, object.NewNumber(-0.5).IsTruthy())
	require.False(t, object.NewNumber(0).IsTruthy())
	require.True(t, object.True.IsTruthy())
	require.False(t, object.False.IsTruthy())
	require.False(t, object.Nil.IsTruthy())
	require.True(t, object.NewString("x").IsTruthy())
	require.False(t, object.NewString("").IsTruthy())
	require.True(t, object.NewArray(object.Nil).IsTruthy())
	require.False(t, object.NewArray().IsTruthy())

	// Everything else defaults to truthy.
	require.True(t, object.NewPath("").IsTruthy())
	require.True(t, object.NewCorrection("drift").IsTruthy())
	require.True(t, object.NewEnum("E").IsTruthy())
}

func TestBoolSingletons(t *testing.T) {
	require.Same(t, object.True, object.NewBool(true))
	require.Same(t, object.False, object.NewBool(false))
	require.Same(t, object.False, object.True.Invert())
	require.Same(t, object.True, object.False.Invert())
}

func TestEnumFields(t *testing.T) {
	e := object.NewEnum("Direction")
	e.Define("North")
	e.Define("East")
	e.Define("South")

	v, ok := e.GetField("East")
	require.True(t, ok)
	require.Equal(t, 1.0, v.(*object.Number).Value())

	v, ok = e.GetField("North")
	require.True(t, ok)
	require.Equal(t, 0.0, v.(*object.Number).Value())

	_, ok = e.GetField("West")
	require.False(t, ok)
}

func TestNativeEnumFields(t *testing.T) {
	e := object.NewNativeEnum("Trigger", map[string]float64{
		"Low":  0,
		"High": 5,
	})
	v, ok := e.GetField("High")
	require.True(t, ok)
	require.Equal(t, 5.0, v.(*object.Number).Value())

	_, ok = e.GetField("Rising")
	require.False(t, ok)
}

func TestNativeFunctionCall(t *testing.T) {
	fn := object.NewNativeFunction("double", func(ctx context.Context, args []object.Value) (object.Value, error) {
		n := args[0].(*object.Number)
		return object.NewNumber(n.Value() * 2), nil
	})
	require.Equal(t, `<Native Function "double">`, fn.Inspect())

	result, err := fn.Call(context.Background(), []object.Value{object.NewNumber(21)})
	require.Nil(t, err)
	require.Equal(t, 42.0, result.(*object.Number).Value())
}

func TestNativeIteratorNext(t *testing.T) {
	i := 0
	it := object.NewNativeIterator("counter", func() (object.Value, bool) {
		if i >= 2 {
			return nil, false
		}
		i++
		return object.NewNumber(float64(i)), true
	})

	v, ok := it.Next()
	require.True(t, ok)
	require.Equal(t, 1.0, v.(*object.Number).Value())

	v, ok = it.Next()
	require.True(t, ok)
	require.Equal(t, 2.0, v.(*object.Number).Value())

	_, ok = it.Next()
	require.False(t, ok)
}

func TestGeneratorResumeState(t *testing.T) {
	gen := object.NewGenerator(bytecode.NewFunction("snake", 0, bytecode.NewChunk()))

	it := gen.Prime([]object.Value{gen})
	require.Same(t, gen, it.Generator())

	window, ip := gen.Saved()
	require.Equal(t, 0, ip)
	require.Len(t, window, 1)

	gen.Suspend([]object.Value{gen, object.NewNumber(7)}, 12)
	window, ip = gen.Saved()
	require.Equal(t, 12, ip)
	require.Len(t, window, 2)

	// Priming again resets the resume state.
	gen.Prime([]object.Value{gen})
	window, ip = gen.Saved()
	require.Equal(t, 0, ip)
	require.Len(t, window, 1)
}
