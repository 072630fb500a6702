package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// CreateFolder creates every given directory (and parents) if missing.
func CreateFolder(folderPath ...string) error {
	for _, folder := range folderPath {
		if folder == "" {
			continue
		}
		if err := os.MkdirAll(folder, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", folder, err)
		}
	}
	return nil
}

// EnsureParentDir creates the directory that will hold file, e.g. a SQLite database.
func EnsureParentDir(file string) error {
	dir := filepath.Dir(file)
	if dir == "." || dir == "" {
		return nil
	}
	return CreateFolder(dir)
}
