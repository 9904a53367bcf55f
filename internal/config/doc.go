// Package config defines the settings of setup-package and provides helpers
// to load, validate and save them in YAML or TOML format.
//
// The Config type selects the resolution mode (global version, static mapping
// or spreadsheet) and holds the file store folder and content root used by
// the installer.
package config
