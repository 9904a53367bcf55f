// Package settings implements the init command: it writes a settings file
// with defaults and logs what the operator has to configure next.
package settings
