package processor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"

	"qrcast/internal/protocol"
	"qrcast/pkg/types"
	"qrcast/pkg/utils"
)

// FileService handles file access on both ends of a transfer
type FileService struct {
	maxSize  int64
	warnSize int64
}

// NewFileService creates a file service that refuses files above maxSize bytes
// and warns about files above warnSize bytes. A warnSize of 0 disables the warning.
func NewFileService(maxSize, warnSize int64) *FileService {
	return &FileService{
		maxSize:  maxSize,
		warnSize: warnSize,
	}
}

// LoadFile reads a file for sending. Oversized files are rejected before any
// content is read.
func (f *FileService) LoadFile(filePath string) (*types.FileMetadata, []byte, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get file info: %w", err)
	}
	if stat.IsDir() {
		return nil, nil, fmt.Errorf("%s is a directory", filePath)
	}

	if f.maxSize > 0 && stat.Size() > f.maxSize {
		return nil, nil, fmt.Errorf("%w: %s is %s, limit is %s", protocol.ErrOversizedInput,
			filePath, utils.FormatFileSize(stat.Size()), utils.FormatFileSize(f.maxSize))
	}
	if f.warnSize > 0 && stat.Size() > f.warnSize {
		log.Printf("%s is %s, get ready to be here for a while...", filepath.Base(filePath), utils.FormatFileSize(stat.Size()))
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	metadata := NewMetadata(filepath.Base(filePath), data)
	log.Printf("File prepared for sending: %s, size: %d bytes (%s)",
		filePath, metadata.Size, utils.FormatFileSize(metadata.Size))

	return metadata, data, nil
}

// NewMetadata describes file content held in memory
func NewMetadata(name string, data []byte) *types.FileMetadata {
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = "application/octet-stream" // Default for unknown types
	}

	return &types.FileMetadata{
		Name:     name,
		Size:     int64(len(data)),
		MimeType: mimeType,
		Checksum: Checksum(data),
	}
}

// Checksum returns the hex SHA-256 of data
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ensureDir creates directory if it doesn't exist
func (f *FileService) ensureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}
