package setup

import (
	"path/filepath"
	"strings"
)

const (
	// APIsDirName is the top-level directory with API packages.
	APIsDirName = "APIs"
	// DBsDirName is the top-level directory with database files.
	DBsDirName = "DBs"
	// ScriptsDirName is the top-level directory with helper scripts.
	ScriptsDirName = "Scripts"
	// SchemasDirName receives the generated schemas.
	SchemasDirName = "Schemas"

	archivePrefix = "APIs_V"
	archiveSuffix = ".zip"
)

// DefaultPrefixes lists the archive entry prefixes that are extracted.
func DefaultPrefixes() []string {
	return []string{
		APIsDirName + "/",
		DBsDirName + "/",
		ScriptsDirName + "/",
	}
}

// Paths holds every local path touched by an installation of one version.
type Paths struct {
	// Root is the content root everything is extracted into.
	Root string
	// APIs is the extracted API packages directory.
	APIs string
	// DBs is the extracted databases directory.
	DBs string
	// Scripts is the extracted scripts directory.
	Scripts string
	// Schemas is where the optional generator writes its output.
	Schemas string
	// Archive is the temporary location of the downloaded bundle.
	Archive string
}

// NewPaths derives the installation paths for version under root.
func NewPaths(root, version string) Paths {
	root = filepath.Clean(root)

	return Paths{
		Root:    root,
		APIs:    filepath.Join(root, APIsDirName),
		DBs:     filepath.Join(root, DBsDirName),
		Scripts: filepath.Join(root, ScriptsDirName),
		Schemas: filepath.Join(root, SchemasDirName),
		Archive: filepath.Join(root, ArchiveName(version)),
	}
}

// ResetTargets returns the paths removed before a new installation.
func (p Paths) ResetTargets() []string {
	return []string{p.APIs, p.DBs, p.Scripts, p.Schemas, p.Archive}
}

// Required returns the directories that must exist after extraction.
func (p Paths) Required() []string {
	return []string{p.APIs, p.DBs, p.Scripts}
}

// ArchiveName returns the bundle file name for version, e.g. "APIs_V0.0.8.zip".
func ArchiveName(version string) string {
	return archivePrefix + version + archiveSuffix
}

// MatchesArchive reports whether name is the bundle for version, ignoring case.
func MatchesArchive(name, version string) bool {
	return strings.EqualFold(name, ArchiveName(version))
}
