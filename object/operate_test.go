package object_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probelab/pal/object"
)

func num(v float64) *object.Number { return object.NewNumber(v) }

func TestNumberArithmetic(t *testing.T) {
	require.Equal(t, 7.0, num(3).Operate(object.OpAdd, num(4)).(*object.Number).Value())
	require.Equal(t, -1.0, num(3).Operate(object.OpSub, num(4)).(*object.Number).Value())
	require.Equal(t, -3.0, num(3).Negate().(*object.Number).Value())
}

func TestNumberPowerScalesByTen(t *testing.T) {
	require.Equal(t, 300.0, num(3).Operate(object.OpPower, num(2)).(*object.Number).Value())
	require.Equal(t, 0.05, num(5).Operate(object.OpPower, num(-2)).(*object.Number).Value())
	require.Equal(t, 3.0, num(3).Operate(object.OpPower, num(0)).(*object.Number).Value())

	// A fractional exponent is not defined.
	require.Nil(t, num(3).Operate(object.OpPower, num(0.5)))
}

func TestNumberMixIsBitwiseOr(t *testing.T) {
	require.Equal(t, 7.0, num(5).Operate(object.OpMix, num(3)).(*object.Number).Value())
	require.Nil(t, num(5.5).Operate(object.OpMix, num(3)))
	require.Nil(t, num(5).Operate(object.OpMix, num(3.5)))
}

func TestNumberComparisons(t *testing.T) {
	require.Same(t, object.True, num(2).Operate(object.OpLess, num(3)))
	require.Same(t, object.False, num(3).Operate(object.OpLess, num(3)))
	require.Same(t, object.True, num(4).Operate(object.OpMore, num(3)))
	require.Same(t, object.True, num(3).Operate(object.OpEqual, num(3)))
	require.Same(t, object.False, num(3).Operate(object.OpEqual, num(4)))
}

func TestNumberDeclinesForeignTypes(t *testing.T) {
	require.Nil(t, num(3).Operate(object.OpAdd, object.NewString("4")))
	require.Nil(t, num(3).Operate(object.OpEqual, object.True))
	require.Nil(t, num(3).Invert())
}

func TestBoolEquality(t *testing.T) {
	require.Same(t, object.True, object.True.Operate(object.OpEqual, object.True))
	require.Same(t, object.False, object.True.Operate(object.OpEqual, object.False))

	// Booleans compare to numbers as 1 and 0.
	require.Same(t, object.True, object.True.Operate(object.OpEqual, num(1)))
	require.Same(t, object.False, object.True.Operate(object.OpEqual, num(5)))
	require.Same(t, object.True, object.False.Operate(object.OpEqual, num(0)))
	require.Same(t, object.False, object.False.Operate(object.OpEqual, num(1)))

	require.Nil(t, object.True.Operate(object.OpAdd, object.True))
}

func TestNilEqualityIsTotal(t *testing.T) {
	require.Same(t, object.True, object.Nil.Operate(object.OpEqual, object.Nil))
	require.Same(t, object.False, object.Nil.Operate(object.OpEqual, num(0)))
	require.Same(t, object.False, object.Nil.Operate(object.OpEqual, object.False))
	require.Nil(t, object.Nil.Operate(object.OpAdd, object.Nil))
}

func TestStringOperations(t *testing.T) {
	ab := object.NewString("a").Operate(object.OpAdd, object.NewString("b"))
	require.Equal(t, "ab", ab.(*object.String).Value())

	require.Same(t, object.True, object.NewString("x").Operate(object.OpEqual, object.NewString("x")))
	require.Same(t, object.False, object.NewString("x").Operate(object.OpEqual, object.NewString("y")))

	require.Nil(t, object.NewString("x").Operate(object.OpAdd, num(1)))
	require.Nil(t, object.NewString("x").Operate(object.OpSub, object.NewString("y")))
}

func TestPathHasNoOperators(t *testing.T) {
	p := object.NewPath("C:/scans")
	require.Nil(t, p.Operate(object.OpAdd, object.NewPath("C:/scans")))
	require.Nil(t, p.Operate(object.OpEqual, object.NewPath("C:/scans")))
	require.Nil(t, p.Negate())
	require.Nil(t, p.Invert())
}

func TestArrayMixConcatenates(t *testing.T) {
	a := object.NewArray(num(1), num(2))
	b := object.NewArray(num(3))

	c := a.Operate(object.OpMix, b).(*object.Array)
	require.Len(t, c.Value(), 3)
	require.Len(t, a.Value(), 2)
	require.Equal(t, 3.0, c.Value()[2].(*object.Number).Value())
}

func TestArrayInvertReverses(t *testing.T) {
	a := object.NewArray(num(1), num(2), num(3))
	r := a.Invert().(*object.Array)
	require.Equal(t, 3.0, r.Value()[0].(*object.Number).Value())
	require.Equal(t, 1.0, r.Value()[2].(*object.Number).Value())

	// The source is untouched.
	require.Equal(t, 1.0, a.Value()[0].(*object.Number).Value())
}

func TestArrayEquality(t *testing.T) {
	a := object.NewArray(num(1), object.NewString("x"))
	b := object.NewArray(num(1), object.NewString("x"))
	c := object.NewArray(num(1), object.NewString("y"))
	d := object.NewArray(num(1))

	require.Same(t, object.True, a.Operate(object.OpEqual, b))
	require.Same(t, object.False, a.Operate(object.OpEqual, c))
	require.Same(t, object.False, a.Operate(object.OpEqual, d))
	require.Nil(t, a.Operate(object.OpEqual, num(1)))
}

func TestArrayCopyIsIndependent(t *testing.T) {
	a := object.NewArray(num(1))
	b := a.Copy()
	b.Append(num(2))

	require.Len(t, a.Value(), 1)
	require.Len(t, b.Value(), 2)
}
