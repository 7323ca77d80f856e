package utils

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SanitizeFilename removes or replaces problematic characters from filenames
func SanitizeFilename(filename string) string {
	// Remove path separators
	filename = filepath.Base(filename)

	// Replace problematic characters
	replacer := strings.NewReplacer(
		"<", "_",
		">", "_",
		":", "_",
		"\"", "_",
		"|", "_",
		"?", "_",
		"*", "_",
	)
	return replacer.Replace(filename)
}

// DeduplicateFilename generates a unique filename using macOS-style naming (e.g., "screen 2.png")
func DeduplicateFilename(dir, filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	result := filename
	counter := 2

	for {
		fullPath := filepath.Join(dir, result)
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			return result
		}
		result = base + " " + strconv.Itoa(counter) + ext
		counter++
	}
}

// DetectMimeType detects MIME type based on file extension
func DetectMimeType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	mimeTypes := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".heic": "image/heic",
		".heif": "image/heif",
		".bmp":  "image/bmp",
		".tiff": "image/tiff",
		".tif":  "image/tiff",
	}

	if mime, ok := mimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsScreenshotFile reports whether a filename looks like a captured screen image
func IsScreenshotFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".heic", ".heif", ".gif":
		return true
	}
	return false
}
