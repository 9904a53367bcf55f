// Package resolver decides which bundle version to install.
//
// The version comes from the global switch, from a static mapping in the
// settings or from rows of a remote spreadsheet keyed by notebook identifier.
package resolver
