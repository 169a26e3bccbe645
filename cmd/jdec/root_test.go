package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"jdec/decompiler"
	"jdec/emit"

	"github.com/stretchr/testify/require"
)

func TestToDecompilerOptionsDefaults(t *testing.T) {
	opts := &cliOptions{format: "java", braceStyle: "same-line", indent: 4}
	out, err := toDecompilerOptions(opts)
	require.NoError(t, err)
	require.Equal(t, 4, out.CodeGen.IndentSize)
	require.Equal(t, emit.SameLine, out.CodeGen.BraceStyle)
	require.False(t, out.NoOptimize)
}

func TestToDecompilerOptionsRejectsBadFormat(t *testing.T) {
	opts := &cliOptions{format: "xml", braceStyle: "same-line"}
	_, err := toDecompilerOptions(opts)
	require.Error(t, err)
}

func TestToDecompilerOptionsRejectsBadBraceStyle(t *testing.T) {
	opts := &cliOptions{format: "java", braceStyle: "diagonal"}
	_, err := toDecompilerOptions(opts)
	require.Error(t, err)
}

func TestRunMissingFileExitsUsage(t *testing.T) {
	code := run([]string{"does-not-exist.class"})
	require.Equal(t, exitUsage, code)
}

func TestRunWrongArgCountExitsUsage(t *testing.T) {
	code := run([]string{})
	require.Equal(t, exitUsage, code)
}

func TestRunMalformedClassExitsInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.class")
	require.NoError(t, os.WriteFile(path, []byte{0x00, 0x00, 0x00, 0x00}, 0o644))

	code := run([]string{path, "-o", dir})
	require.Equal(t, exitInput, code)
}

func TestPrintReportFormatsCounters(t *testing.T) {
	var buf bytes.Buffer
	result := &decompiler.Result{
		Stats: decompiler.Stats{MethodsProcessed: 3, MethodsSucceeded: 2, MethodsFailed: 1},
	}
	printReport(&buf, result)
	require.Contains(t, buf.String(), "methods:")
	require.Contains(t, buf.String(), "wall time:")
}
