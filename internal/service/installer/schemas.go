package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/setup-package/internal/logger"
)

// generateSchemas runs the optional post-step. It never fails the run:
// errors are logged as warnings and kept in r.warning.
func (r *runner) generateSchemas(ctx context.Context) {
	switch {
	case r.cfg.SkipSchemas:
		logger.Info(ctx, "Skipping schema generation: disabled in settings")
		return
	case r.generator == nil || !r.generator.Available(r.paths.Root):
		logger.Info(ctx, "Skipping schema generation: generator not found")
		return
	}

	logger.InfoKV(ctx, "Generating schemas", "output", r.paths.Schemas)

	if err := r.runGenerator(ctx); err != nil {
		r.warning = err
		logger.WarnKV(ctx, "Schema generation failed, continuing", "error", err)

		return
	}

	logger.InfoKV(ctx, "Generated schemas", "count", r.schemas, "output", r.paths.Schemas)
}

// runGenerator invokes the generator once per top-level API package.
func (r *runner) runGenerator(ctx context.Context) error {
	if err := os.MkdirAll(r.paths.Schemas, DefaultDirMode); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	packages, err := os.ReadDir(r.paths.APIs)
	if err != nil {
		return fmt.Errorf("list API packages: %w", err)
	}

	for _, pkg := range packages {
		if !pkg.IsDir() {
			continue
		}

		packageDir := filepath.Join(r.paths.APIs, pkg.Name())
		logger.DebugKV(ctx, "Generating schema", "package", pkg.Name())

		if err = r.generator.Generate(ctx, packageDir, r.paths.Schemas); err != nil {
			return fmt.Errorf("generate schema for %s: %w", pkg.Name(), err)
		}
	}

	outputs, err := os.ReadDir(r.paths.Schemas)
	if err != nil {
		return fmt.Errorf("list schemas: %w", err)
	}

	r.schemas = len(outputs)

	return nil
}
