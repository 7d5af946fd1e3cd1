// Package vault defines the on-disk layout under ~/.chatvault.
package vault

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.chatvault.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".chatvault")
}

// DBPath returns the vault database path.
func DBPath() string {
	return filepath.Join(BaseDir(), "chatvault.db")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// LogDir returns the log directory.
func LogDir() string {
	return filepath.Join(BaseDir(), "logs")
}

// LogPath returns the importer log file path.
func LogPath() string {
	return filepath.Join(LogDir(), "chatvault.log")
}

// EnsureDirs creates the vault directory tree with owner-only permissions.
func EnsureDirs() error {
	for _, d := range []string{BaseDir(), LogDir()} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
