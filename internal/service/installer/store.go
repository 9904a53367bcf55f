package installer

import (
	"context"
	"io"

	"github.com/oshokin/setup-package/internal/domain/setup"
)

// FileStore lists and downloads files of the remote store.
type FileStore interface {
	// ListEntries returns the files inside folderID in listing order.
	ListEntries(ctx context.Context, folderID string) ([]setup.Entry, error)
	// DownloadEntry streams the contents of the file with entryID.
	// The caller closes the returned reader.
	DownloadEntry(ctx context.Context, entryID string) (io.ReadCloser, error)
}

// Generator produces schemas for the extracted API packages.
type Generator interface {
	// Available reports whether the generator can run against the content root.
	Available(root string) bool
	// Generate writes the schema of one package directory into outputDir.
	Generate(ctx context.Context, packageDir, outputDir string) error
}
