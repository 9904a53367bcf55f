package installer

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/setup-package/internal/domain/setup"
)

// errEntryEscapesRoot is returned for entries like "APIs/../../etc/passwd".
var errEntryEscapesRoot = errors.New("entry escapes content root")

// extractResult counts what happened to archive entries.
type extractResult struct {
	extracted int
	skipped   int
}

// extractArchive extracts entries of the zip at archivePath whose names start
// with one of prefixes into root, preserving relative paths. It stops at the
// first entry that cannot be written.
func extractArchive(archivePath, root string, prefixes []string) (result extractResult, err error) {
	// Insecure names are tolerated here and rejected per entry below.
	zipReader, err := zip.OpenReader(archivePath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return result, fmt.Errorf("%w: %s: %w", setup.ErrCorruptArchive, archivePath, err)
	}

	defer func() {
		if closeErr := zipReader.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: close %s: %w", setup.ErrExtraction, archivePath, closeErr)
		}
	}()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return result, fmt.Errorf("%w: resolve content root: %w", setup.ErrExtraction, err)
	}

	for _, file := range zipReader.File {
		if !hasAnyPrefix(file.Name, prefixes) {
			result.skipped++
			continue
		}

		if err = extractEntry(file, absRoot); err != nil {
			return result, fmt.Errorf("%w: %s: %w", setup.ErrExtraction, file.Name, err)
		}

		result.extracted++
	}

	return result, nil
}

// extractEntry writes one archive entry below root.
func extractEntry(file *zip.File, root string) error {
	destPath := filepath.Join(root, filepath.FromSlash(file.Name))

	relPath, err := filepath.Rel(root, destPath)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return errEntryEscapesRoot
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(destPath, DefaultDirMode)
	}

	if err = os.MkdirAll(filepath.Dir(destPath), DefaultDirMode); err != nil {
		return err
	}

	return extractFile(file, destPath)
}

// extractFile copies a single file from the zip archive.
func extractFile(file *zip.File, destPath string) (err error) {
	rc, err := file.Open()
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = DefaultFileMode
	}

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := destFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	//nolint:gosec // G110: bundles come from the project's own file store.
	_, err = io.Copy(destFile, rc)

	return err
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}
