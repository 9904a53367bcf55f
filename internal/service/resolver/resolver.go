package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/oshokin/setup-package/internal/config"
	"github.com/oshokin/setup-package/internal/domain/setup"
	"github.com/oshokin/setup-package/internal/logger"
	"github.com/oshokin/setup-package/internal/service/common"
)

// RowSource reads the rows of one tab of a remote tabular source.
// Implementations return setup.ErrSourceUnavailable when the source cannot be
// reached and setup.ErrTabNotFound when the tab does not exist.
type RowSource interface {
	FetchRows(ctx context.Context, sourceID, tab string) ([]setup.Row, error)
}

// Resolve returns the version to install for identifier.
// In global mode the identifier is ignored and no network call is made.
func Resolve(ctx context.Context, identifier string, cfg *config.Config, source RowSource) (string, error) {
	if cfg.GlobalMode {
		logger.InfoKV(ctx, "Global switch is on, using global version", "version", cfg.GlobalVersion)
		return cfg.GlobalVersion, nil
	}

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", setup.ErrMissingIdentifier
	}

	mapping, err := loadMapping(ctx, cfg, source)
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Global switch is off, looking up identifier", "identifier", identifier)

	version, ok := mapping.Lookup(identifier)
	if !ok {
		logger.DebugKV(ctx, "Known identifiers", "identifiers", mapping.Identifiers())
		return "", fmt.Errorf("%w: %q", setup.ErrUnknownIdentifier, identifier)
	}

	logger.InfoKV(ctx, "Found version for identifier", "identifier", identifier, "version", version)

	return version, nil
}

// loadMapping returns the static mapping or builds one from the spreadsheet.
func loadMapping(ctx context.Context, cfg *config.Config, source RowSource) (setup.Mapping, error) {
	if !cfg.UsesSheet() {
		logger.InfoKV(ctx, "Using static version mapping", "entries", len(cfg.Mapping))
		return setup.Mapping(cfg.Mapping), nil
	}

	if source == nil {
		return nil, fmt.Errorf("%w: no spreadsheet client configured", setup.ErrSourceUnavailable)
	}

	logger.InfoKV(ctx, "Reading version mapping from spreadsheet", "sheet_id", cfg.SheetID, "tab", cfg.SheetTab)

	callCtx, cancel := common.CallContext(ctx, cfg.Timeout.Duration())
	defer cancel()

	rows, err := source.FetchRows(callCtx, cfg.SheetID, cfg.SheetTab)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", cfg.SheetID, err)
	}

	mapping, skipped := ParseRows(rows, cfg.NameColumn, cfg.VersionColumn)
	if skipped > 0 {
		logger.DebugKV(ctx, "Skipped rows without a usable identifier or version", "rows", skipped)
	}

	logger.InfoKV(ctx, "Built version mapping from spreadsheet", "entries", len(mapping))

	return mapping, nil
}
