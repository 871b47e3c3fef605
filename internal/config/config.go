// Package config handles bibble's global configuration and data paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents configuration stored in ~/.config/bibble/config.yml.
type Config struct {
	// PageTitle is the heading for rendered pages.
	PageTitle string `yaml:"page_title,omitempty"`
	// Template is a path to an HTML template overriding the built-in one.
	Template string `yaml:"template,omitempty"`
	// DOIPrefix overrides the default DOI resolver URL.
	DOIPrefix string `yaml:"doi_prefix,omitempty"`
	// PDFRoot is the directory local PDF links are resolved against.
	PDFRoot string `yaml:"pdf_root,omitempty"`
	// Publish configures where `bibble publish` uploads rendered pages.
	Publish PublishConfig `yaml:"publish,omitempty"`
}

// PublishConfig identifies the remote web host for published pages.
type PublishConfig struct {
	Host      string `yaml:"host,omitempty"`       // SSH host name
	Path      string `yaml:"path,omitempty"`       // remote destination path
	ProxyJump string `yaml:"proxy_jump,omitempty"` // optional jump host
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "bibble"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"

	// DataDir is the per-project data directory holding the entry cache.
	DataDir = ".bibble"
	// DBFile is the SQLite entry cache file name.
	DBFile = "entries.db"
)

// configCache caches the loaded config for the process lifetime.
var configCache *Config

// Path returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/bibble/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func Load() (*Config, error) {
	if configCache != nil {
		return configCache, nil
	}

	path := Path()
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Template = ExpandTilde(cfg.Template)
	cfg.PDFRoot = ExpandTilde(cfg.PDFRoot)

	configCache = &cfg
	return &cfg, nil
}

// ResetCache clears the cached config. Useful for testing.
func ResetCache() {
	configCache = nil
}

// DBPath returns the path to the entry cache database under root.
func DBPath(root string) string {
	return filepath.Join(root, DataDir, DBFile)
}

// EnsureDataDir creates the per-project data directory if needed.
func EnsureDataDir(root string) error {
	return os.MkdirAll(filepath.Join(root, DataDir), 0755)
}

// ExpandTilde expands a leading ~ to the user's home directory.
// Returns the original path unchanged otherwise.
func ExpandTilde(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
