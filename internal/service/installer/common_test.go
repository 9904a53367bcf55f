package installer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/setup-package/internal/domain/setup"
)

// TestInstanceGuard_AcquireRelease writes and removes the marker.
func TestInstanceGuard_AcquireRelease(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	guard := newInstanceGuard(root)

	require.NoError(t, guard.acquire(context.Background()))

	data, err := os.ReadFile(filepath.Join(root, MarkerFilename))
	require.NoError(t, err)
	require.Equal(t, strconv.Itoa(os.Getpid()), string(data))

	guard.release(context.Background())
	requireAbsent(t, filepath.Join(root, MarkerFilename))

	// Releasing twice is harmless.
	guard.release(context.Background())
}

// TestInstanceGuard_StaleMarker replaces markers of dead or foreign processes.
func TestInstanceGuard_StaleMarker(t *testing.T) {
	t.Parallel()

	for _, contents := range []string{"not-a-pid", strconv.Itoa(os.Getpid()), strconv.Itoa(os.Getppid())} {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, MarkerFilename), []byte(contents), 0o600))

		guard := newInstanceGuard(root)
		guard.processName = "setup-package-that-never-runs"

		require.NoError(t, guard.acquire(context.Background()), contents)
	}
}

// TestInstanceGuard_LiveOwner refuses to run while the marker owner is alive.
func TestInstanceGuard_LiveOwner(t *testing.T) {
	t.Parallel()

	parent, err := ps.FindProcess(os.Getppid())
	require.NoError(t, err)

	if parent == nil || parent.Executable() == "" {
		t.Skip("parent process is not visible")
	}

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, MarkerFilename), []byte(strconv.Itoa(parent.Pid())), 0o600))

	guard := newInstanceGuard(root)
	guard.processName = parent.Executable()

	err = guard.acquire(context.Background())
	require.ErrorIs(t, err, setup.ErrAlreadyRunning)
}

// TestSameExecutable allows for truncated process names.
func TestSameExecutable(t *testing.T) {
	t.Parallel()

	require.True(t, sameExecutable("setup-package", "setup-package"))
	require.True(t, sameExecutable("setup-package-linux-amd64", "setup-package-l"))
	require.False(t, sameExecutable("setup-package", "setup"))
	require.False(t, sameExecutable("setup-package", ""))
}

// TestLogProgress reports each ten percent step once.
func TestLogProgress(t *testing.T) {
	t.Parallel()

	var reports []int64

	reader := &progressReader{
		reader: bytes.NewReader(make([]byte, 1000)),
		total:  1000,
		report: func(written, _ int64) {
			reports = append(reports, written)
		},
	}

	buf := make([]byte, 100)
	for {
		_, err := reader.Read(buf)
		if err != nil {
			break
		}
	}

	require.Len(t, reports, 10)
	require.Equal(t, int64(1000), reader.written)

	// The logging reporter ignores unknown totals.
	logProgress(context.Background())(10, 0)
}
