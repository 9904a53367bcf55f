package setup

import "errors"

var (
	// ErrMissingIdentifier is returned when per-identifier resolution is used without an identifier.
	ErrMissingIdentifier = errors.New("identifier is required when global mode is off")
	// ErrUnknownIdentifier is returned when the identifier has no entry in the version mapping.
	ErrUnknownIdentifier = errors.New("identifier not found in version mapping")
	// ErrSourceUnavailable is returned when the remote tabular source cannot be read.
	ErrSourceUnavailable = errors.New("version source unavailable")
	// ErrTabNotFound is returned when the configured tab does not exist in the source.
	ErrTabNotFound = errors.New("tab not found in version source")
	// ErrArtifactNotFound is returned when no archive matches the resolved version.
	ErrArtifactNotFound = errors.New("artifact archive not found")
	// ErrDownload is returned on any transport fault while downloading the archive.
	ErrDownload = errors.New("download failed")
	// ErrCorruptArchive is returned when the downloaded archive cannot be opened.
	ErrCorruptArchive = errors.New("archive cannot be opened")
	// ErrExtraction is returned when an archive entry cannot be extracted.
	ErrExtraction = errors.New("extraction failed")
	// ErrIncompleteInstall is returned when required directories are missing after extraction.
	ErrIncompleteInstall = errors.New("installation is incomplete")
	// ErrAlreadyRunning is returned when another installer process owns the content root.
	ErrAlreadyRunning = errors.New("another setup run is in progress")
	// ErrAborted is returned when the user interrupts the identifier prompt.
	ErrAborted = errors.New("setup aborted by user")
)
