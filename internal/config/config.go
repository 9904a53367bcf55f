package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the resolver and the installer.
// It is loaded once at process start and treated as read-only afterwards.
type Config struct {
	// GlobalMode makes every run install GlobalVersion regardless of identifier.
	GlobalMode bool `yaml:"global_mode" toml:"global_mode"`
	// GlobalVersion is the version installed when GlobalMode is on.
	GlobalVersion string `yaml:"global_version,omitempty" toml:"global_version,omitempty"`
	// Mapping is an optional static identifier-to-version table.
	// When it is not empty the spreadsheet is not queried.
	Mapping map[string]string `yaml:"mapping,omitempty" toml:"mapping,omitempty"`
	// SheetID identifies the spreadsheet with the version table.
	SheetID string `yaml:"sheet_id,omitempty" toml:"sheet_id,omitempty"`
	// SheetTab is the tab (worksheet) name inside the spreadsheet.
	SheetTab string `yaml:"sheet_tab,omitempty" toml:"sheet_tab,omitempty"`
	// NameColumn is the header of the column holding notebook file names.
	NameColumn string `yaml:"name_column,omitempty" toml:"name_column,omitempty"`
	// VersionColumn is the header of the column holding versions.
	VersionColumn string `yaml:"version_column,omitempty" toml:"version_column,omitempty"`
	// ContentRoot is the directory the bundle is extracted into.
	ContentRoot string `yaml:"content_root,omitempty" toml:"content_root,omitempty"`
	// FolderID is the remote file store folder holding the bundles.
	FolderID string `yaml:"folder_id,omitempty" toml:"folder_id,omitempty"`
	// CredentialsFile is an optional Google credentials JSON file.
	// Application default credentials are used when it is empty.
	CredentialsFile string `yaml:"credentials_file,omitempty" toml:"credentials_file,omitempty"`
	// Timeout bounds every remote call; zero disables the deadline.
	Timeout Duration `yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	// Python is the interpreter used by the schema generator.
	Python string `yaml:"python,omitempty" toml:"python,omitempty"`
	// SkipSchemas disables the schema generation post-step.
	SkipSchemas bool `yaml:"skip_schemas,omitempty" toml:"skip_schemas,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "setup-package-settings.yaml"

	// DefaultSheetTab is the worksheet read when none is configured.
	DefaultSheetTab = "Sheet1"

	// DefaultNameColumn is the spreadsheet column with notebook file names.
	DefaultNameColumn = "Notebook"

	// DefaultVersionColumn is the spreadsheet column with versions.
	DefaultVersionColumn = "Latest_Working_Version"

	// DefaultContentRoot is where bundles are extracted.
	DefaultContentRoot = "/content"

	// DefaultFolderID is the remote folder holding published bundles.
	DefaultFolderID = "1QpkAZxXhVFzIbm8qPGPRP1YqXEvJ4uD4"

	// DefaultPython is the interpreter used for schema generation.
	DefaultPython = "python3"

	// DefaultFilePermissions is the default file permission for settings files.
	DefaultFilePermissions = 0o600

	tomlExtension = ".toml"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errGlobalVersionRequired is returned when global mode has no version to install.
	errGlobalVersionRequired = errors.New("global_version must be provided when global_mode is on")
	// errVersionSourceRequired is returned when neither a mapping nor a sheet is configured.
	errVersionSourceRequired = errors.New("either mapping or sheet_id must be provided when global_mode is off")
	// errNegativeTimeout is returned for a timeout below zero.
	errNegativeTimeout = errors.New("timeout must not be negative")
	// errEmptyMappingEntry is returned for mapping rows with an empty key or value.
	errEmptyMappingEntry = errors.New("mapping entries must have a non-empty identifier and version")
)

// Default returns settings that read versions from the default spreadsheet tab.
func Default() *Config {
	cfg := new(Config)
	applyDefaults(cfg)

	return cfg
}

// Override adjusts loaded settings before validation, e.g. from CLI flags.
type Override func(*Config)

// Load reads configuration from the provided path, applies overrides and
// validates essential fields.
// Files ending in .toml are decoded as TOML, everything else as YAML.
func Load(path string, overrides ...Override) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if isTOML(path) {
		err = toml.Unmarshal(contents, &cfg)
	} else {
		err = yaml.Unmarshal(contents, &cfg)
	}

	if err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	for _, override := range overrides {
		if override != nil {
			override(&cfg)
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)

	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}

	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file may point at credentials.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the provided settings for consistency.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	applyDefaults(settings)

	if settings.Timeout < 0 {
		return errNegativeTimeout
	}

	if settings.GlobalMode {
		if strings.TrimSpace(settings.GlobalVersion) == "" {
			return errGlobalVersionRequired
		}

		return nil
	}

	for identifier, version := range settings.Mapping {
		if identifier == "" || version == "" {
			return fmt.Errorf("%w: %q -> %q", errEmptyMappingEntry, identifier, version)
		}
	}

	if len(settings.Mapping) == 0 && settings.SheetID == "" {
		return errVersionSourceRequired
	}

	return nil
}

// UsesSheet reports whether versions are read from the remote spreadsheet.
func (c *Config) UsesSheet() bool {
	return !c.GlobalMode && len(c.Mapping) == 0
}

func applyDefaults(settings *Config) {
	settings.GlobalVersion = strings.TrimSpace(settings.GlobalVersion)

	if settings.SheetTab == "" {
		settings.SheetTab = DefaultSheetTab
	}

	if settings.NameColumn == "" {
		settings.NameColumn = DefaultNameColumn
	}

	if settings.VersionColumn == "" {
		settings.VersionColumn = DefaultVersionColumn
	}

	if settings.ContentRoot == "" {
		settings.ContentRoot = DefaultContentRoot
	}

	if settings.FolderID == "" {
		settings.FolderID = DefaultFolderID
	}

	if settings.Python == "" {
		settings.Python = DefaultPython
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), tomlExtension)
}
