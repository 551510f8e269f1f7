package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "fghextractor"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/fghextractor by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/fghextractor by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/fghextractor/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// PatientQueryFilePath returns the default path of the patient query file.
func PatientQueryFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "patients.sql")
}

// PatientQueryFile returns the configured patient query file, or the
// default one from the config directory.
func (c *Config) PatientQueryFile() string {
	if c.Extract.PatientQueryFile != "" {
		return c.Extract.PatientQueryFile
	}
	return PatientQueryFilePath(c.HomeDir)
}
