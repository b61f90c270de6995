package pal

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probelab/pal/errors"
	"github.com/probelab/pal/instrument"
	"github.com/probelab/pal/object"
	"github.com/probelab/pal/vm"
)

func TestRunPrintsToOutput(t *testing.T) {
	var buf bytes.Buffer
	status, err := Run(context.Background(), "var x = 2\n(x + 1)?\n", WithOutput(&buf))
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)
	require.Equal(t, "3\n", buf.String())
}

func TestRunReportsCompileErrors(t *testing.T) {
	status, err := Run(context.Background(), "var = 3\n")
	require.Equal(t, vm.CompileError, status)
	require.Error(t, err)
}

func TestRunReportsRuntimeErrors(t *testing.T) {
	var buf bytes.Buffer
	status, err := Run(context.Background(), "missing?\n", WithOutput(&buf))
	require.Equal(t, vm.RuntimeError, status)
	require.Error(t, err)

	var runtimeErr *errors.RuntimeError
	require.ErrorAs(t, err, &runtimeErr)
	require.Contains(t, runtimeErr.Error(), `Undefined variable "missing"`)
}

func TestWithFilenameTagsCompileErrors(t *testing.T) {
	_, err := Compile("var = 1\n", WithFilename("probe.pal"))
	require.Error(t, err)

	var compileErr *errors.CompileError
	require.ErrorAs(t, err, &compileErr)
	require.Equal(t, "probe.pal", compileErr.Filename)
}

func TestCompileProducesReusableProgram(t *testing.T) {
	program, err := Compile("var total = 40 + 2\ntotal?\n", WithFilename("sum.pal"))
	require.NoError(t, err)
	require.Equal(t, "sum.pal", program.SourceName())
	require.Greater(t, program.Stats().InstructionCount, 0)

	for i := 0; i < 2; i++ {
		var buf bytes.Buffer
		status, err := RunProgram(context.Background(), program, WithOutput(&buf))
		require.NoError(t, err)
		require.Equal(t, vm.OK, status)
		require.Equal(t, "42\n", buf.String())
	}
}

func TestWithGlobalSeedsValue(t *testing.T) {
	var buf bytes.Buffer
	status, err := Run(context.Background(), "answer?\n",
		WithOutput(&buf), WithGlobal("answer", object.NewNumber(42)))
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)
	require.Equal(t, "42\n", buf.String())
}

func TestBenchOptionWiresInstrument(t *testing.T) {
	bench, withBench := Bench(instrument.Options{Seed: 3})
	var buf bytes.Buffer
	status, err := Run(context.Background(), "Scan\nCluster\nMark\n",
		withBench, WithOutput(&buf))
	require.NoError(t, err)
	require.Equal(t, vm.OK, status, buf.String())

	report := bench.Report()
	require.Equal(t, 1, report.Actions["survey"])
	require.Equal(t, 1, report.Actions["segment"])
	require.Equal(t, 1, report.Actions["interact"])
}

func TestMachinePersistsGlobalsAcrossEvals(t *testing.T) {
	var buf bytes.Buffer
	machine := NewMachine(WithOutput(&buf))

	status, err := machine.Eval(context.Background(), "var count = 1\n")
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)

	status, err = machine.Eval(context.Background(), "count = count + 1\ncount?\n")
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)
	require.Equal(t, "2\n", buf.String())

	value, ok := machine.Get("count")
	require.True(t, ok)
	require.Equal(t, "2", value.Inspect())
	require.Contains(t, machine.GlobalNames(), "count")
}

func TestMachineSurvivesErrors(t *testing.T) {
	var buf bytes.Buffer
	machine := NewMachine(WithOutput(&buf))

	status, err := machine.Eval(context.Background(), "var x = 1\nboom?\n")
	require.Equal(t, vm.RuntimeError, status)
	require.Error(t, err)

	buf.Reset()
	status, err = machine.Eval(context.Background(), "x?\n")
	require.NoError(t, err)
	require.Equal(t, vm.OK, status)
	require.Equal(t, "1\n", buf.String())
}
