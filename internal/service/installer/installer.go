package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oshokin/setup-package/internal/config"
	"github.com/oshokin/setup-package/internal/domain/setup"
	"github.com/oshokin/setup-package/internal/logger"
	"github.com/oshokin/setup-package/internal/repository/receipt"
	"github.com/oshokin/setup-package/internal/service/common"
)

var (
	errSettingsNotInitialised = errors.New("settings are not initialized")
	errStoreNotInitialised    = errors.New("file store is not initialized")
	errEmptyVersion           = errors.New("version is empty")
)

// Options are inputs accepted by the installer entry point.
type Options struct {
	// Version is the resolved bundle version to install.
	Version string
	// Config holds the content root, folder and post-step settings.
	Config *config.Config
	// Store is the remote file store holding the bundles.
	Store FileStore
	// Generator runs the optional schema post-step; nil disables it.
	Generator Generator
	// Receipts persists the receipt of a successful run; nil disables it.
	Receipts receipt.Repository
	// Prefixes is the extraction allowlist, setup.DefaultPrefixes() when empty.
	Prefixes []string
	// Progress receives download progress; download steps are logged when nil.
	Progress ProgressFunc
}

// Result describes a finished installation.
type Result struct {
	// Version is the installed version.
	Version string
	// Paths are the local paths of the installation.
	Paths setup.Paths
	// Entry is the remote archive that was installed.
	Entry setup.Entry
	// State is StateDone for successful runs.
	State State
	// Warning is the post-step failure, nil when the post-step succeeded or was skipped.
	Warning error
	// Schemas is the number of files in the schema directory.
	Schemas int
	// Receipt is the record written for the run.
	Receipt *setup.Receipt
}

// runner holds the mutable state of a single installation.
// It is intentionally unexported, call Run(ctx, Options) from callers.
type runner struct {
	cfg       *config.Config // Read-only settings.
	version   string         // Version being installed.
	paths     setup.Paths    // Local paths derived from the content root.
	store     FileStore      // Remote file store.
	generator Generator      // Optional schema generator.
	receipts  receipt.Repository
	prefixes  []string     // Extraction allowlist.
	progress  ProgressFunc // Download progress sink.
	state     State        // Current stage.
	entry     setup.Entry  // Located archive.
	warning   error        // Post-step failure.
	schemas   int          // Generated schema files.
}

// Run installs the bundle for opts.Version and is the public entry point for the CLI.
// Failures in the reset..verify stages are returned as *StageError; a failing
// schema post-step is reported through Result.Warning instead.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "installer")

	r, err := newRunner(opts)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithKV(ctx, "version", r.version)

	if err = os.MkdirAll(r.paths.Root, DefaultDirMode); err != nil {
		return nil, fmt.Errorf("create content root: %w", err)
	}

	guard := newInstanceGuard(r.paths.Root)
	if err = guard.acquire(ctx); err != nil {
		return nil, err
	}

	defer guard.release(ctx)

	logger.InfoKV(ctx, "Starting setup", "content_root", r.paths.Root)

	result, err := r.run(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Setup failed", "error", err)
		return nil, err
	}

	logger.InfoKV(ctx, "All setup complete, version is ready to use", "schemas", result.Schemas)

	return result, nil
}

// newRunner validates options and prepares the runner.
func newRunner(opts *Options) (*runner, error) {
	if opts == nil || opts.Config == nil {
		return nil, errSettingsNotInitialised
	}

	if opts.Store == nil {
		return nil, errStoreNotInitialised
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		return nil, errEmptyVersion
	}

	prefixes := opts.Prefixes
	if len(prefixes) == 0 {
		prefixes = setup.DefaultPrefixes()
	}

	return &runner{
		cfg:       opts.Config,
		version:   version,
		paths:     setup.NewPaths(opts.Config.ContentRoot, version),
		store:     opts.Store,
		generator: opts.Generator,
		receipts:  opts.Receipts,
		prefixes:  prefixes,
		progress:  opts.Progress,
		state:     StateIdle,
	}, nil
}

// run executes the stages in order:
// 1) Reset the previous installation.
// 2) Locate the archive in the file store.
// 3) Download it.
// 4) Extract the allowlisted trees and delete the archive.
// 5) Verify the required directories.
// 6) Generate schemas (best-effort).
func (r *runner) run(ctx context.Context) (*Result, error) {
	stages := []struct {
		state State
		fn    func(context.Context) error
	}{
		{StateResetting, r.reset},
		{StateLocating, r.locate},
		{StateDownloading, r.download},
		{StateExtracting, r.extract},
		{StateVerifying, r.verify},
	}

	for _, stage := range stages {
		r.state = stage.state
		logger.DebugKV(ctx, "Entering stage", "stage", stage.state.String())

		if err := stage.fn(ctx); err != nil {
			r.state = StateFailed

			return nil, &StageError{Stage: stage.state, Err: err}
		}
	}

	r.state = StatePostStep
	r.generateSchemas(ctx)

	r.state = StateDone

	return r.finish(ctx), nil
}

// reset removes everything a previous installation left behind.
func (r *runner) reset(ctx context.Context) error {
	logger.Info(ctx, "Cleaning up previous installation")

	return Reset(r.paths)
}

// Reset deletes the installation paths; paths that do not exist are ignored.
func Reset(paths setup.Paths) error {
	for _, path := range paths.ResetTargets() {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}

	return nil
}

// locate finds the archive for the version; the first match in listing order wins.
func (r *runner) locate(ctx context.Context) error {
	archiveName := setup.ArchiveName(r.version)
	logger.InfoKV(ctx, "Searching for archive", "archive", archiveName, "folder_id", r.cfg.FolderID)

	callCtx, cancel := common.CallContext(ctx, r.cfg.Timeout.Duration())
	defer cancel()

	entries, err := r.store.ListEntries(callCtx, r.cfg.FolderID)
	if err != nil {
		return fmt.Errorf("%w: list folder %s: %w", setup.ErrArtifactNotFound, r.cfg.FolderID, err)
	}

	for _, entry := range entries {
		if setup.MatchesArchive(entry.Name, r.version) {
			r.entry = entry
			logger.InfoKV(ctx, "Found matching archive", "name", entry.Name, "id", entry.ID)

			return nil
		}
	}

	return fmt.Errorf("%w: %s in folder %s", setup.ErrArtifactNotFound, archiveName, r.cfg.FolderID)
}

// download streams the located archive to the temporary archive path.
// No deadline is applied: bundles are large and the call reports progress.
func (r *runner) download(ctx context.Context) (err error) {
	logger.InfoKV(ctx, "Downloading archive", "path", r.paths.Archive)

	body, err := r.store.DownloadEntry(ctx, r.entry.ID)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", setup.ErrDownload, r.entry.Name, err)
	}

	defer func() {
		if closeErr := body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: close %s: %w", setup.ErrDownload, r.entry.Name, closeErr)
		}
	}()

	progress := r.progress
	if progress == nil {
		progress = logProgress(ctx)
	}

	reader := &progressReader{
		reader: body,
		total:  r.entry.Size,
		report: progress,
	}

	if err = writeArchive(reader, r.paths.Archive); err != nil {
		return fmt.Errorf("%w: %s: %w", setup.ErrDownload, r.entry.Name, err)
	}

	logger.InfoKV(ctx, "Download complete", "bytes", reader.written)

	return nil
}

// extract unpacks the allowlisted trees and removes the archive.
func (r *runner) extract(ctx context.Context) error {
	logger.InfoKV(ctx, "Extracting archive", "path", r.paths.Archive, "prefixes", r.prefixes)

	result, err := extractArchive(r.paths.Archive, r.paths.Root, r.prefixes)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Extracted archive", "entries", result.extracted, "skipped", result.skipped)

	if err = os.Remove(r.paths.Archive); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove archive: %w", err)
	}

	return nil
}

// verify checks that every required directory exists.
func (r *runner) verify(ctx context.Context) error {
	logger.Info(ctx, "Verifying extracted items")

	return Verify(ctx, r.paths)
}

// Verify fails with setup.ErrIncompleteInstall naming every missing directory.
func Verify(ctx context.Context, paths setup.Paths) error {
	var missing []string

	for _, path := range paths.Required() {
		info, err := os.Stat(path)
		present := err == nil && info.IsDir()

		logger.InfoKV(ctx, "Checked directory", "name", filepath.Base(path), "present", present)

		if !present {
			missing = append(missing, path)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", setup.ErrIncompleteInstall, strings.Join(missing, ", "))
	}

	return nil
}

// finish builds the result and persists the receipt.
func (r *runner) finish(ctx context.Context) *Result {
	rec := &setup.Receipt{
		Version:     r.version,
		Archive:     r.entry.Name,
		EntryID:     r.entry.ID,
		InstalledAt: time.Now().UTC(),
		Schemas:     r.schemas,
	}

	if r.warning != nil {
		rec.Warning = r.warning.Error()
	}

	r.saveReceipt(ctx, rec)

	return &Result{
		Version: r.version,
		Paths:   r.paths,
		Entry:   r.entry,
		State:   r.state,
		Warning: r.warning,
		Schemas: r.schemas,
		Receipt: rec.Clone(),
	}
}

// saveReceipt records the run; failures only produce a warning.
func (r *runner) saveReceipt(ctx context.Context, rec *setup.Receipt) {
	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Unable to detect actor", "error", err)
	}

	rec.Actor = actor

	if r.receipts == nil {
		return
	}

	if err = r.receipts.Save(ctx, rec); err != nil {
		logger.WarnKV(ctx, "Unable to save receipt", "error", err)
	}
}
