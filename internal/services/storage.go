package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StorageService validates uploads and hands out scratch directories for
// work that needs files on disk. Uploaded documents are never kept beyond
// the request that processes them.
type StorageService interface {
	ReadUpload(file *multipart.FileHeader, allowedExts ...string) ([]byte, error)
	NewWorkspace(kind string) (dir string, cleanup func(), err error)
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath  string
	maxFileSize int64
}

func NewStorageService(uploadPath string, maxFileSize int64) StorageService {
	return &storageService{
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *storageService) ReadUpload(file *multipart.FileHeader, allowedExts ...string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(allowedExts) > 0 && !containsExt(allowedExts, ext) {
		return nil, fmt.Errorf("%w: invalid file extension %q", ErrUnsupportedFormat, ext)
	}
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrUnsupportedFormat, s.maxFileSize)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	var r io.Reader = src
	if s.maxFileSize > 0 {
		r = io.LimitReader(src, s.maxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrUnsupportedFormat, s.maxFileSize)
	}

	return data, nil
}

// NewWorkspace creates a uniquely named directory under the upload path.
// cleanup removes it with everything inside.
func (s *storageService) NewWorkspace(kind string) (string, func(), error) {
	if err := s.EnsureUploadDir(); err != nil {
		return "", nil, err
	}

	dir := filepath.Join(s.uploadPath, fmt.Sprintf("%s_%s", kind, uuid.New().String()))
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	return dir, func() { os.RemoveAll(dir) }, nil
}

func containsExt(exts []string, ext string) bool {
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
