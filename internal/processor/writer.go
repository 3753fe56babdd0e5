package processor

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"qrcast/internal/protocol"
	"qrcast/pkg/types"
)

// fallbackName is used when the transmitted filename cannot be used as is
const fallbackName = "received.bin"

// WriteFile materializes a received payload under destDir and returns the
// path written. Only the base name of the transmitted filename is used.
func (f *FileService) WriteFile(destDir string, payload protocol.Payload) (string, *types.FileMetadata, error) {
	if err := f.ensureDir(destDir); err != nil {
		return "", nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	name := safeName(payload.Name)
	destPath := filepath.Join(destDir, name)

	if err := os.WriteFile(destPath, payload.Data, 0644); err != nil {
		return "", nil, fmt.Errorf("failed to write file: %w", err)
	}

	metadata := NewMetadata(name, payload.Data)
	log.Printf("File writing completed: %s (original: %q, %d bytes, type: %s)",
		destPath, payload.Name, metadata.Size, metadata.MimeType)

	return destPath, metadata, nil
}

// safeName strips directories so a transmitted name cannot escape destDir
func safeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	if base == "." || base == ".." || base == "/" || strings.TrimSpace(base) == "" {
		return fallbackName
	}
	return base
}
