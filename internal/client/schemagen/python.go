package schemagen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/oshokin/setup-package/internal/domain/setup"
)

const (
	// DefaultInterpreter is used when no interpreter is configured.
	DefaultInterpreter = "python3"

	// ScriptPath is the generator module relative to the content root.
	ScriptPath = setup.ScriptsDirName + "/FCSpec.py"

	// invokeScript imports the generator from the content root and runs it
	// for the package and output folder passed as arguments.
	invokeScript = `import sys
from Scripts.FCSpec import generate_package_schema
generate_package_schema(sys.argv[1], output_folder_path=sys.argv[2])
`
)

var errEmptyPackageDir = errors.New("package directory is empty")

// Python invokes generate_package_schema through a Python interpreter.
type Python struct {
	interpreter string
}

// NewPython creates a generator using interpreter, or python3 when it is empty.
func NewPython(interpreter string) *Python {
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}

	return &Python{interpreter: interpreter}
}

// Available reports whether root ships the generator script and the
// interpreter can be found.
func (p *Python) Available(root string) bool {
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(ScriptPath)))
	if err != nil || info.IsDir() {
		return false
	}

	_, err = exec.LookPath(p.interpreter)

	return err == nil
}

// Generate writes the schemas of packageDir into outputDir.
// packageDir is expected at <root>/APIs/<package>.
func (p *Python) Generate(ctx context.Context, packageDir, outputDir string) error {
	if packageDir == "" {
		return errEmptyPackageDir
	}

	packageDir, err := filepath.Abs(packageDir)
	if err != nil {
		return fmt.Errorf("resolve package directory: %w", err)
	}

	outputDir, err = filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("resolve output directory: %w", err)
	}

	apisDir := filepath.Dir(packageDir)
	root := filepath.Dir(apisDir)

	//nolint:gosec // interpreter comes from the operator's settings file.
	cmd := exec.CommandContext(ctx, p.interpreter, "-c", invokeScript, filepath.Base(packageDir), outputDir)
	cmd.Dir = apisDir
	cmd.Env = append(os.Environ(), "PYTHONPATH="+pythonPath(root, os.Getenv("PYTHONPATH")))

	var output bytes.Buffer

	cmd.Stdout = &output
	cmd.Stderr = &output

	if err = cmd.Run(); err != nil {
		return fmt.Errorf("generate %s: %w: %s", filepath.Base(packageDir), err, strings.TrimSpace(output.String()))
	}

	return nil
}

func pythonPath(root, existing string) string {
	if existing == "" {
		return root
	}

	return root + string(os.PathListSeparator) + existing
}
