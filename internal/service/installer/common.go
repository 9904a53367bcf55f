package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/setup-package/internal/domain/setup"
	"github.com/oshokin/setup-package/internal/logger"
)

const (
	// MarkerFilename marks that an installation is running in the content root.
	MarkerFilename = ".setup-marker"

	// DefaultDirMode is used for directories created during extraction.
	DefaultDirMode os.FileMode = 0o755

	// DefaultFileMode is used for extracted files without stored permissions.
	DefaultFileMode os.FileMode = 0o644

	// processNameLimit is the length the kernel truncates process names to.
	processNameLimit = 15
)

// instanceGuard keeps two setup runs from writing the same content root.
type instanceGuard struct {
	// markerPath is the marker file holding the owner's process ID.
	markerPath string
	// processName is the executable name of setup runs.
	processName string
}

// newInstanceGuard creates a guard for the content root.
func newInstanceGuard(root string) *instanceGuard {
	processName := filepath.Base(os.Args[0])
	if executable, err := os.Executable(); err == nil {
		processName = filepath.Base(executable)
	}

	return &instanceGuard{
		markerPath:  filepath.Join(root, MarkerFilename),
		processName: processName,
	}
}

// acquire writes the marker or fails with setup.ErrAlreadyRunning when the
// marker belongs to a live setup process. Stale markers are replaced.
func (g *instanceGuard) acquire(ctx context.Context) error {
	logger.Debug(ctx, "Checking for the presence of a setup marker")

	running, err := g.isOwnerRunning(ctx)
	if err != nil {
		return err
	}

	if running {
		return fmt.Errorf("%w: marker %s", setup.ErrAlreadyRunning, g.markerPath)
	}

	pid := strconv.Itoa(os.Getpid())
	if err = os.WriteFile(g.markerPath, []byte(pid), DefaultFileMode); err != nil {
		return fmt.Errorf("write setup marker: %w", err)
	}

	return nil
}

// release removes the marker.
func (g *instanceGuard) release(ctx context.Context) {
	if err := os.Remove(g.markerPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Unable to remove setup marker", "path", g.markerPath, "error", err)
	}
}

// isOwnerRunning reports whether the process recorded in the marker is
// another live setup process.
func (g *instanceGuard) isOwnerRunning(ctx context.Context) (bool, error) {
	contents, err := os.ReadFile(g.markerPath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug(ctx, "Setup marker not found, continuing")
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("read setup marker: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid == os.Getpid() {
		logger.Info(ctx, "The setup marker is stale, replacing it")
		return false, nil
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		return false, fmt.Errorf("find process %d: %w", pid, err)
	}

	if process == nil || !sameExecutable(g.processName, process.Executable()) {
		logger.InfoKV(ctx, "The setup marker is stale, replacing it", "pid", pid)
		return false, nil
	}

	return true, nil
}

// sameExecutable compares executable names, allowing for kernel truncation.
func sameExecutable(ours, theirs string) bool {
	if theirs == "" {
		return false
	}

	if ours == theirs {
		return true
	}

	return len(theirs) >= processNameLimit && strings.HasPrefix(ours, theirs)
}
