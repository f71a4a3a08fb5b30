package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// LogDirectory returns the directory for rotated cl-exports logs.
//
// Locations:
//   - Windows: %LOCALAPPDATA%\commercelayer\logs
//   - Unix: ~/.config/commercelayer/logs
func LogDirectory() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "commercelayer-logs")
			}
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, "commercelayer", "logs")
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "commercelayer-logs")
		}
		return filepath.Join(homeDir, ".config", "commercelayer", "logs")
	}
	return filepath.Join(configDir, "commercelayer", "logs")
}

// DefaultLogFile is the file used when --log-file is given without a value.
func DefaultLogFile() string {
	return filepath.Join(LogDirectory(), "cl-exports.log")
}

// EnsureLogDirectory creates the parent directory of a log file with owner-only permissions.
func EnsureLogDirectory(logFile string) error {
	return os.MkdirAll(filepath.Dir(logFile), 0700)
}
