package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// FormatFileSize formats file size in human readable format
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// ResolveDestinationPath resolves the destination directory for received files
func ResolveDestinationPath(destPath string) (string, error) {
	// Check if the path exists and is a directory
	if info, err := os.Stat(destPath); err == nil {
		if info.IsDir() {
			// Valid directory - return as is (filename will come from the payload)
			return destPath, nil
		}
		// Path exists but is not a directory
		return "", fmt.Errorf("destination path '%s' exists but is not a directory", destPath)
	} else if os.IsNotExist(err) {
		// Path doesn't exist - it will be created if its parent exists
		dir := filepath.Dir(destPath)
		if info, dirErr := os.Stat(dir); dirErr == nil && info.IsDir() {
			return destPath, nil
		}
		// Parent doesn't exist
		return "", fmt.Errorf("parent directory does not exist: %s", dir)
	} else {
		// Other error accessing the path
		return "", fmt.Errorf("cannot access destination path: %w", err)
	}
}
