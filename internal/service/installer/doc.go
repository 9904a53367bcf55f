// Package installer downloads and unpacks a versioned artifact bundle.
//
// It resets the previous installation, finds APIs_V<version>.zip in the remote
// file store, downloads it atomically, extracts the allowlisted top-level
// trees into the content root, verifies them and optionally runs the schema
// generator over every API package.
package installer
