package processor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrcast/internal/protocol"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	metadata, data, err := NewFileService(1024, 0).LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "notes.txt", metadata.Name)
	assert.Equal(t, int64(5), metadata.Size)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", metadata.Checksum)
}

func TestLoadFileOversized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 101), 0644))

	_, _, err := NewFileService(100, 50).LoadFile(path)
	assert.ErrorIs(t, err, protocol.ErrOversizedInput)
}

func TestLoadFileMissingOrDirectory(t *testing.T) {
	dir := t.TempDir()
	service := NewFileService(100, 0)

	_, _, err := service.LoadFile(filepath.Join(dir, "nope"))
	assert.Error(t, err)

	_, _, err = service.LoadFile(dir)
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	service := NewFileService(0, 0)

	path, metadata, err := service.WriteFile(dir, protocol.Payload{Name: "a.txt", Data: []byte{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.txt"), path)
	assert.Equal(t, int64(3), metadata.Size)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, written)
}

func TestWriteFileStaysInDestination(t *testing.T) {
	dir := t.TempDir()
	service := NewFileService(0, 0)

	path, _, err := service.WriteFile(dir, protocol.Payload{Name: "../../etc/passwd", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "passwd"), path)

	path, _, err = service.WriteFile(dir, protocol.Payload{Name: "", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, fallbackName), path)
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "report.pdf", safeName("report.pdf"))
	assert.Equal(t, "b.txt", safeName(`C:\users\a\b.txt`))
	assert.Equal(t, fallbackName, safeName(".."))
	assert.Equal(t, fallbackName, safeName("/"))
	assert.Equal(t, fallbackName, safeName("  "))
}
