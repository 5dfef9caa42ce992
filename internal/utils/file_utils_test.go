package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllowedFileType(t *testing.T) {
	allowed := []string{"image/png", "image/jpeg"}

	assert.True(t, IsAllowedFileType("image/png", allowed))
	assert.True(t, IsAllowedFileType("image/jpeg", allowed))
	assert.False(t, IsAllowedFileType("image/webp", allowed))
	assert.False(t, IsAllowedFileType("", allowed))
	assert.True(t, IsAllowedFileType("image/gif", []string{"image/*"}))
	assert.False(t, IsAllowedFileType("text/plain", []string{"image/*"}))
	assert.True(t, IsAllowedFileType("anything", nil))
}

func TestInferMimeType(t *testing.T) {
	assert.Equal(t, "image/png", InferMimeType("cat.png"))
	assert.Equal(t, "image/jpeg", InferMimeType("cat.JPG"))
	assert.Equal(t, "application/octet-stream", InferMimeType("README"))
}

func TestDetectMediaType(t *testing.T) {
	dir := t.TempDir()

	// PNG文件头，扩展名故意写错
	pngPath := filepath.Join(dir, "actually-png.jpg")
	pngHeader := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	require.NoError(t, os.WriteFile(pngPath, pngHeader, 0o644))
	assert.Equal(t, "image/png", DetectMediaType(pngPath))

	textPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("hello"), 0o644))
	assert.Equal(t, "text/plain", DetectMediaType(textPath))

	assert.Equal(t, "image/jpeg", DetectMediaType(filepath.Join(dir, "missing.jpeg")))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "2.0 KB", FormatFileSize(2048))
	assert.Equal(t, "5.0 MB", FormatFileSize(5*1024*1024))
}
