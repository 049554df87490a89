package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tieubaoca/pdfqa-be/types"
)

const DefaultMaxFileSizeMB = 50

var AllowedExtensions = []string{".pdf"}

// ValidateFileType accepts only the allowed extensions, case-insensitively.
func ValidateFileType(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	received := ext
	if received == "" {
		received = "sin extensión"
	}
	return types.NewError(types.KindInvalidFileType,
		"Solo se aceptan archivos %s. Recibido: %s", strings.Join(AllowedExtensions, ", "), received)
}

func ValidateFileSize(size int64, maxSizeMB int) error {
	if maxSizeMB <= 0 {
		maxSizeMB = DefaultMaxFileSizeMB
	}
	maxBytes := int64(maxSizeMB) * 1024 * 1024
	if size > maxBytes {
		return types.NewError(types.KindFileTooLarge,
			"Tamaño máximo permitido: %dMB. Archivo recibido: %.2fMB", maxSizeMB, float64(size)/(1024*1024))
	}
	return nil
}

// SaveUploadedFile writes src into uploadDir as <name>_<timestamp><ext>, with
// every character outside [A-Za-z0-9._-] replaced by an underscore.
// Returns the destination path.
func SaveUploadedFile(src io.Reader, uploadDir, originalName string) (string, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	base := filepath.Base(originalName)
	ext := strings.ToLower(filepath.Ext(base))
	name := strings.TrimSuffix(base, filepath.Ext(base))
	filename := SanitizeFilename(fmt.Sprintf("%s_%d%s", name, time.Now().UnixNano(), ext))
	destPath := filepath.Join(uploadDir, filename)

	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to copy file: %w", err)
	}
	return destPath, nil
}

func SanitizeFilename(filename string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, filename)
}

// GetFileNameWithoutExt extracts filename without extension from a file path
func GetFileNameWithoutExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
