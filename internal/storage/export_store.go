package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// FileType is the kind of export being written
type FileType int

const (
	FileTypeJSON FileType = iota
	FileTypeExcel
)

var (
	ErrEmptyName    = errors.New("export name is empty")
	ErrPathEscapes  = errors.New("path escapes base directory")
	ErrExtMismatch  = errors.New("export name does not match file type")
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_. ]`)
)

// Extension returns the file extension exports of this type must carry
func (t FileType) Extension() string {
	if t == FileTypeExcel {
		return ".xlsx"
	}
	return ".json"
}

// ExportStore writes report history and spreadsheet exports under a base
// directory. Files are written to a temporary sibling first and renamed
// into place, so readers never see a partial export.
type ExportStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewExportStore creates an ExportStore rooted at baseDir
func NewExportStore(baseDir string, logger *zap.Logger) *ExportStore {
	return &ExportStore{
		baseDir: baseDir,
		logger:  logger,
	}
}

// BaseDir returns the directory exports are written to
func (s *ExportStore) BaseDir() string {
	return s.baseDir
}

// Save sanitizes name, checks it carries the extension of fileType and
// streams write into baseDir/name. It returns the written path.
func (s *ExportStore) Save(name string, fileType FileType, write func(w io.Writer) error) (string, error) {
	safeName := SanitizeName(name)
	if safeName == "" {
		return "", ErrEmptyName
	}
	if !strings.EqualFold(filepath.Ext(safeName), fileType.Extension()) {
		return "", fmt.Errorf("%w: %s", ErrExtMismatch, name)
	}

	fullPath := filepath.Join(s.baseDir, safeName)
	if err := s.ValidatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		s.logger.Error("Failed to create export directory",
			zap.String("path", s.baseDir),
			zap.Error(err))
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	tmp, err := os.CreateTemp(s.baseDir, "."+safeName+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		s.logger.Error("Failed to write export",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", fmt.Errorf("failed to set export permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}

	s.logger.Debug("Export saved",
		zap.String("path", fullPath),
		zap.String("extension", fileType.Extension()))

	return fullPath, nil
}

// Open opens a previously saved export by name
func (s *ExportStore) Open(name string) (*os.File, error) {
	safeName := SanitizeName(name)
	if safeName == "" {
		return nil, ErrEmptyName
	}
	fullPath := filepath.Join(s.baseDir, safeName)
	if err := s.ValidatePath(fullPath); err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

// ValidatePath checks that the path is within baseDir
func (s *ExportStore) ValidatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrPathEscapes, fullPath)
	}
	return nil
}

// SanitizeName strips path separators, parent references and characters
// unsafe on common filesystems from an export file name
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")
	name = unsafeNameChars.ReplaceAllString(name, "")
	return strings.TrimLeft(strings.TrimSpace(name), ".")
}
