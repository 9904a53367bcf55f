package installer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/setup-package/internal/config"
	"github.com/oshokin/setup-package/internal/domain/setup"
)

var errFakeTransport = errors.New("connection reset by peer")

// fakeStore is an in-memory FileStore.
type fakeStore struct {
	entries     []setup.Entry
	files       map[string][]byte
	listErr     error
	downloadErr error
	downloaded  []string
	// breakAt and breakErr make the body fail after breakAt bytes.
	breakAt  int
	breakErr error
}

func (f *fakeStore) ListEntries(_ context.Context, _ string) ([]setup.Entry, error) {
	return f.entries, f.listErr
}

func (f *fakeStore) DownloadEntry(_ context.Context, entryID string) (io.ReadCloser, error) {
	f.downloaded = append(f.downloaded, entryID)

	if f.downloadErr != nil {
		return nil, f.downloadErr
	}

	data, ok := f.files[entryID]
	if !ok {
		return nil, errFakeTransport
	}

	if f.breakErr != nil {
		return io.NopCloser(&brokenReader{data: data[:f.breakAt], err: f.breakErr}), nil
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// brokenReader returns data and then err instead of io.EOF.
type brokenReader struct {
	data []byte
	err  error
	// onBreak runs once before err is returned.
	onBreak func()
}

func (b *brokenReader) Read(p []byte) (int, error) {
	if len(b.data) == 0 {
		if b.onBreak != nil {
			b.onBreak()
			b.onBreak = nil
		}

		return 0, b.err
	}

	n := copy(p, b.data)
	b.data = b.data[n:]

	return n, nil
}

// fakeGenerator writes one JSON file per package or fails with err.
type fakeGenerator struct {
	mu        sync.Mutex
	available bool
	err       error
	packages  []string
}

func (g *fakeGenerator) Available(_ string) bool {
	return g.available
}

func (g *fakeGenerator) Generate(_ context.Context, packageDir, outputDir string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.packages = append(g.packages, filepath.Base(packageDir))

	if g.err != nil {
		return g.err
	}

	return os.WriteFile(filepath.Join(outputDir, filepath.Base(packageDir)+".json"), []byte("{}"), 0o600)
}

// buildZip returns a zip archive with the given file names and contents.
// Names ending in "/" become directory entries.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer

	w := zip.NewWriter(&buf)

	for name, body := range files {
		f, err := w.Create(name)
		require.NoError(t, err)

		if body != "" {
			_, err = f.Write([]byte(body))
			require.NoError(t, err)
		}
	}

	require.NoError(t, w.Close())

	return buf.Bytes()
}

// completeBundle is a bundle with every required directory and a stray tree.
func completeBundle(t *testing.T) []byte {
	t.Helper()

	return buildZip(t, map[string]string{
		"APIs/":                  "",
		"APIs/gmail/__init__.py": "print('gmail')",
		"APIs/slack/__init__.py": "print('slack')",
		"DBs/gmail.json":         "{}",
		"Scripts/FCSpec.py":      "def generate_package_schema(p, output_folder_path): pass",
		"Other/readme.txt":       "not extracted",
		"__MACOSX/APIs/._gmail":  "junk",
		"APIs_V0.0.8/nested.txt": "prefix lookalike",
	})
}

// globalConfig returns validated settings installing into a temporary root.
func globalConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		GlobalMode:    true,
		GlobalVersion: "0.0.8",
		ContentRoot:   filepath.Join(t.TempDir(), "content"),
	}
	require.NoError(t, config.Validate(cfg))

	return cfg
}

func requireExists(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	require.NoError(t, err, path)
}

func requireAbsent(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist, path)
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names
}
