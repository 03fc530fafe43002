package document

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphaelgruber/legal-advisor/internal/apperr"
	"github.com/raphaelgruber/legal-advisor/internal/config"
)

const bytesPerMB = 1024 * 1024

// SizeMB returns the size of the file at path in megabytes.
func SizeMB(path string) (float64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", apperr.ErrDocumentNotFound, path)
		}
		return 0, fmt.Errorf("stat document: %w", err)
	}
	return float64(info.Size()) / bytesPerMB, nil
}

// ValidateFileType accepts only file names with a supported extension.
func ValidateFileType(name string) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, accepted := range config.AcceptedFileTypes {
		if ext == accepted {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", apperr.ErrInvalidFileType, name)
}

// SaveUpload writes an uploaded document to a new temporary file and returns
// its path. The caller must remove it with Cleanup.
func SaveUpload(r io.Reader, name string) (string, error) {
	if err := ValidateFileType(name); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "upload-*"+strings.ToLower(filepath.Ext(name)))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close upload: %w", err)
	}

	return tmp.Name(), nil
}

// Cleanup removes a temporary file. Failures are logged, never returned.
func Cleanup(logger *slog.Logger, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Error("failed to remove temporary file", "path", path, "error", err)
	}
}

// FileHash returns the hex md5 digest of the file contents. It identifies
// repeated uploads and is not used for security.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
