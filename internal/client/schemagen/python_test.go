package schemagen

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeInterpreter writes a shell script standing in for python3.
// It receives: -c <script> <package> <output>.
// Tests exec'ing it stay sequential so no concurrent fork holds the file open.
func fakeInterpreter(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell interpreter stub needs a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "fake-python")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))

	return path
}

// contentRoot builds <root>/APIs/<pkg> and, optionally, the generator script.
func contentRoot(t *testing.T, withScript bool) (string, string) {
	t.Helper()

	root := t.TempDir()
	packageDir := filepath.Join(root, "APIs", "gmail")
	require.NoError(t, os.MkdirAll(packageDir, 0o755))

	if withScript {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "Scripts"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "Scripts", "FCSpec.py"), []byte("# generator\n"), 0o644))
	}

	return root, packageDir
}

// TestAvailable requires both the script and the interpreter.
func TestAvailable(t *testing.T) {
	interpreter := fakeInterpreter(t, "exit 0")

	withScript, _ := contentRoot(t, true)
	withoutScript, _ := contentRoot(t, false)

	require.True(t, NewPython(interpreter).Available(withScript))
	require.False(t, NewPython(interpreter).Available(withoutScript))
	require.False(t, NewPython(filepath.Join(t.TempDir(), "missing")).Available(withScript))
}

// TestGenerate passes the package and output folder to the interpreter.
func TestGenerate(t *testing.T) {
	interpreter := fakeInterpreter(t,
		`[ "$1" = "-c" ] || exit 2
printf '%s|%s' "$(pwd)" "$PYTHONPATH" > "$4/$3.json"`)

	root, packageDir := contentRoot(t, true)
	outputDir := filepath.Join(root, "Schemas")
	require.NoError(t, os.MkdirAll(outputDir, 0o755))

	require.NoError(t, NewPython(interpreter).Generate(context.Background(), packageDir, outputDir))

	data, err := os.ReadFile(filepath.Join(outputDir, "gmail.json"))
	require.NoError(t, err)

	parts := strings.SplitN(string(data), "|", 2)
	require.Len(t, parts, 2)

	workDir, err := filepath.EvalSymlinks(parts[0])
	require.NoError(t, err)

	apisDir, err := filepath.EvalSymlinks(filepath.Join(root, "APIs"))
	require.NoError(t, err)

	require.Equal(t, apisDir, workDir)
	require.True(t, strings.HasPrefix(parts[1], root))
}

// TestGenerate_Failure reports the interpreter output.
func TestGenerate_Failure(t *testing.T) {
	interpreter := fakeInterpreter(t, `echo "ModuleNotFoundError: FCSpec" >&2
exit 3`)

	root, packageDir := contentRoot(t, true)

	err := NewPython(interpreter).Generate(context.Background(), packageDir, filepath.Join(root, "Schemas"))
	require.ErrorContains(t, err, "ModuleNotFoundError")
	require.ErrorContains(t, err, "gmail")

	require.ErrorIs(t, NewPython(interpreter).Generate(context.Background(), "", root), errEmptyPackageDir)
}

// TestNewPython defaults the interpreter.
func TestNewPython(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultInterpreter, NewPython("").interpreter)
}

func TestPythonPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/content", pythonPath("/content", ""))
	require.Equal(t, "/content"+string(os.PathListSeparator)+"/opt/lib", pythonPath("/content", "/opt/lib"))
}
