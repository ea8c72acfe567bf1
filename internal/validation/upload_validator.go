package validation

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"adlens/internal/config"
)

// UploadValidator enforces the file-intake constraints before an
// uploaded report ever reaches the parser: extension allow-list and a
// hard size ceiling. Violations are reported with specific messages;
// the parser is never invoked for a rejected file.
type UploadValidator struct {
	cfg    config.UploadConfig
	logger *slog.Logger
}

// NewUploadValidator creates a new upload validator
func NewUploadValidator(cfg config.UploadConfig, logger *slog.Logger) *UploadValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadValidator{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "upload_validator")),
	}
}

// MaxFileSize returns the configured size ceiling in bytes.
func (v *UploadValidator) MaxFileSize() int64 {
	return v.cfg.MaxFileSize
}

// ValidateFilename checks the uploaded filename against the extension
// allow-list.
func (v *UploadValidator) ValidateFilename(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range v.cfg.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}

	v.logger.Warn("rejected upload with unsupported extension",
		slog.String("filename", name),
		slog.String("extension", ext))
	return fmt.Errorf("file %s is not a supported report export (extension: %s)", name, ext)
}

// ValidateSize checks the uploaded file size against the ceiling.
func (v *UploadValidator) ValidateSize(name string, size int64) error {
	if size > v.cfg.MaxFileSize {
		v.logger.Warn("rejected oversized upload",
			slog.String("filename", name),
			slog.Int64("size", size),
			slog.Int64("max_size", v.cfg.MaxFileSize))
		return fmt.Errorf("file %s exceeds the maximum size of %d bytes", name, v.cfg.MaxFileSize)
	}
	return nil
}
