package paths

import (
	"os"
	"path/filepath"
)

// GetConfigDir returns the user's config directory for quill.
//
// If the home directory cannot be determined, it falls back to a directory
// under the system temporary directory. This is a best-effort fallback and
// not intended to be a security boundary.
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(filepath.Join(os.TempDir(), ".quill-config"))
	}
	return filepath.Clean(filepath.Join(homeDir, ".config", "quill"))
}

// GetDataDir returns the user's data directory for quill (sessions, history,
// logs).
//
// If the home directory cannot be determined, it falls back to a directory
// under the system temporary directory.
func GetDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(filepath.Join(os.TempDir(), ".quill"))
	}
	return filepath.Clean(filepath.Join(homeDir, ".quill"))
}
