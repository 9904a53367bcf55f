package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/setup-package/internal/config"
	"github.com/oshokin/setup-package/internal/logger"
)

// errSettingsExist is returned when init would overwrite an existing file.
var errSettingsExist = errors.New("settings file already exists, use --force to overwrite it")

// Options contains inputs for the init entry point.
type Options struct {
	// ConfigPath is where settings are written (defaults to config.DefaultConfigFilename).
	ConfigPath string
	// SheetID is the spreadsheet with the version table.
	SheetID string
	// Overrides adjust defaults, e.g. from CLI flags.
	Overrides []config.Override
	// Force allows overwriting an existing settings file.
	Force bool
}

// Run writes a settings file built from defaults, SheetID and overrides.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "setup-package-init")

	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultConfigFilename
	}

	cfg := config.Default()
	cfg.SheetID = strings.TrimSpace(opts.SheetID)

	for _, override := range opts.Overrides {
		if override != nil {
			override(cfg)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !opts.Force {
		return fmt.Errorf("%w: %s", errSettingsExist, path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}

	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	logger.InfoKV(ctx, "Settings saved", "path", path)
	printNextSteps(ctx, path, cfg)

	return nil
}

// printNextSteps logs human-readable guidance for the saved settings.
func printNextSteps(ctx context.Context, path string, cfg *config.Config) {
	var builder strings.Builder

	if cfg.GlobalMode {
		builder.WriteString("Every run installs version ")
		builder.WriteString(cfg.GlobalVersion)
		builder.WriteString(".")
	} else {
		builder.WriteString("Versions are read from column \"")
		builder.WriteString(cfg.VersionColumn)
		builder.WriteString("\" of tab \"")
		builder.WriteString(cfg.SheetTab)
		builder.WriteString("\" in spreadsheet ")
		builder.WriteString(cfg.SheetID)
		builder.WriteString(".")
	}

	builder.WriteString("\nMake sure the credentials can read the Drive folder ")
	builder.WriteString(cfg.FolderID)

	if !cfg.GlobalMode {
		builder.WriteString(" and the spreadsheet")
	}

	builder.WriteString(".\nThen run: setup-package --config ")
	builder.WriteString(path)
	builder.WriteString(" <identifier>")

	logger.Info(ctx, builder.String())
}
