package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/probelab/pal"
)

func TestGetSourceFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "probe.pal")
	require.NoError(t, os.WriteFile(path, []byte("1?\n"), 0o644))

	source, name, err := getSource(rootCmd, []string{path})
	require.NoError(t, err)
	require.Equal(t, "1?\n", source)
	require.Equal(t, path, name)
}

func TestGetSourceRejectsMixedInputs(t *testing.T) {
	require.NoError(t, rootCmd.PersistentFlags().Set("code", "1?"))
	defer func() {
		require.NoError(t, rootCmd.PersistentFlags().Set("code", ""))
		rootCmd.PersistentFlags().Lookup("code").Changed = false
	}()

	_, _, err := getSource(rootCmd, []string{"probe.pal"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "multiple input sources")
}

func TestPrintDiagnosticsAggregatesCompileErrors(t *testing.T) {
	previous := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = previous }()

	_, err := pal.Compile("var = 1\nvar = 2\n", pal.WithFilename("bad.pal"))
	require.Error(t, err)

	var buf bytes.Buffer
	printDiagnostics(&buf, err)
	out := buf.String()
	require.Contains(t, out, "syntax error")
	require.Contains(t, out, "1/2")
	require.Contains(t, out, "2/2")
}

func TestDisassembleWritesTables(t *testing.T) {
	previous := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = previous }()

	var buf bytes.Buffer
	require.NoError(t, disassemble("var x = 1\nx?\n", "script", &buf))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "script:"))
	require.Contains(t, out, "CONSTANT")
	require.Contains(t, out, "DEF_GLOBAL")
}
