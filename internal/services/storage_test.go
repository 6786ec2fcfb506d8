package services

import (
	"bytes"
	"mime/multipart"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["file"][0]
}

func TestStorageService_ReadUpload(t *testing.T) {
	t.Run("should read an allowed file", func(t *testing.T) {
		s := NewStorageService(t.TempDir(), 1024)

		data, err := s.ReadUpload(fileHeader(t, "CV.PDF", []byte("%PDF")), ".pdf", ".docx")
		require.NoError(t, err)

		assert.Equal(t, []byte("%PDF"), data)
	})

	t.Run("should reject other extensions", func(t *testing.T) {
		s := NewStorageService(t.TempDir(), 1024)

		_, err := s.ReadUpload(fileHeader(t, "cv.png", []byte("x")), ".pdf")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("should reject oversized files", func(t *testing.T) {
		s := NewStorageService(t.TempDir(), 4)

		_, err := s.ReadUpload(fileHeader(t, "cv.pdf", []byte("0123456789")), ".pdf")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestStorageService_NewWorkspace(t *testing.T) {
	s := NewStorageService(t.TempDir(), 0)

	dir, cleanup, err := s.NewWorkspace("render")
	require.NoError(t, err)
	assert.DirExists(t, dir)
	require.NoError(t, os.WriteFile(dir+"/x.png", []byte("x"), 0o644))

	cleanup()
	assert.NoDirExists(t, dir)
}
