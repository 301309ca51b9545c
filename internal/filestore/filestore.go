package filestore

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Poorani-S/pettycash-backend/internal"
)

// allowedExtensions is the upload allow-list. Anything else is rejected
// before a byte is written.
var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
}

const DefaultMaxFileSize = 5 << 20 // 5MB

// Store writes uploaded documents under a base directory, one subdirectory
// per category, with collision-free generated names.
type Store struct {
	baseDir     string
	maxFileSize int64
	logger      *slog.Logger
}

func NewStore(baseDir string, maxFileSize int64, logger *slog.Logger) *Store {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Store{
		baseDir:     baseDir,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// Save validates and persists an uploaded file, returning the relative path
// to store on the owning record.
func (s *Store) Save(category, filename string, size int64, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", internal.ErrInvalidFileType
	}
	if size > s.maxFileSize {
		return "", internal.ErrFileTooLarge
	}

	dir := filepath.Join(s.baseDir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", internal.NewInternalError("failed to create upload directory", err)
	}

	generated := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102150405"), uuid.NewString(), ext)
	fullPath := filepath.Join(dir, generated)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", internal.NewInternalError("failed to create file", err)
	}
	defer dst.Close()

	// The declared size is client-supplied; enforce the cap on actual bytes.
	written, err := io.Copy(dst, io.LimitReader(src, s.maxFileSize+1))
	if err != nil {
		os.Remove(fullPath)
		return "", internal.NewInternalError("failed to write file", err)
	}
	if written > s.maxFileSize {
		os.Remove(fullPath)
		return "", internal.ErrFileTooLarge
	}

	relPath := filepath.Join(category, generated)
	s.logger.Info("file stored", "path", relPath, "size", written)
	return relPath, nil
}

// Open returns a reader for a previously stored file.
func (s *Store) Open(relPath string) (io.ReadCloser, error) {
	cleaned := filepath.Clean(relPath)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return nil, internal.NewValidationError("invalid file path", internal.ErrCodeValidationFailed)
	}

	f, err := os.Open(filepath.Join(s.baseDir, cleaned))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, internal.NewNotFoundError("file not found", internal.ErrCodeValidationFailed)
		}
		return nil, err
	}
	return f, nil
}

// Remove deletes a stored file. Missing files are not an error; the caller
// is cleaning up a reference that may already be gone.
func (s *Store) Remove(relPath string) error {
	cleaned := filepath.Clean(relPath)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return internal.NewValidationError("invalid file path", internal.ErrCodeValidationFailed)
	}

	err := os.Remove(filepath.Join(s.baseDir, cleaned))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
