package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oshokin/setup-package/internal/logger"
)

const (
	// progressStep is the percentage between two progress reports.
	progressStep = 10

	// partialSuffix marks an archive that is still being downloaded.
	partialSuffix = ".part"
)

// ProgressFunc receives the number of bytes downloaded so far and the
// expected total, which is zero when the store does not report a size.
type ProgressFunc func(written, total int64)

// progressReader reports every read to a ProgressFunc.
type progressReader struct {
	reader  io.Reader
	total   int64
	written int64
	report  ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.reader.Read(b)
	if n > 0 {
		p.written += int64(n)
		p.report(p.written, p.total)
	}

	return n, err
}

// logProgress returns a ProgressFunc that logs each completed step.
func logProgress(ctx context.Context) ProgressFunc {
	lastStep := int64(-1)

	return func(written, total int64) {
		if total <= 0 {
			return
		}

		step := written * 100 / total / progressStep
		if step == lastStep {
			return
		}

		lastStep = step
		logger.InfoKV(ctx, "Download progress", "percent", min(step*progressStep, 100))
	}
}

// writeArchive streams r into a temporary file next to path and renames it
// over path once the copy is complete. The temporary file is removed when
// anything fails, so path never holds a partial archive.
func writeArchive(r io.Reader, path string) (err error) {
	path = filepath.Clean(path)

	part, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*"+partialSuffix)
	if err != nil {
		return fmt.Errorf("create partial archive: %w", err)
	}

	partPath := part.Name()

	defer func() {
		if err != nil {
			_ = part.Close()
			_ = os.Remove(partPath)
		}
	}()

	if _, err = io.Copy(part, r); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	if err = part.Sync(); err != nil {
		return fmt.Errorf("sync archive: %w", err)
	}

	if err = part.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if err = os.Chmod(partPath, DefaultFileMode); err != nil {
		return fmt.Errorf("chmod archive: %w", err)
	}

	if err = os.Rename(partPath, path); err != nil {
		return fmt.Errorf("rename archive: %w", err)
	}

	return nil
}
