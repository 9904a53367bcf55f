// Package setup contains core domain types for installing an artifact bundle.
//
// It defines the installation Paths derived from a content root and version,
// the identifier-to-version Mapping, the Receipt written after a successful
// install and the sentinel errors shared by the resolver and the installer.
package setup
