package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"alfredoptarigan/resume-critic/internal/models"
)

// Rasterizer renders every page of a resume PDF into a PNG image.
type Rasterizer interface {
	Render(ctx context.Context, filename string, data []byte) ([]models.Image, error)
}

// commandRunner runs an external program to completion.
type commandRunner func(ctx context.Context, name string, args ...string) error

func execCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

type pdftoppmRasterizer struct {
	binary  string
	dpi     int
	run     commandRunner
	storage StorageService
}

// NewPdftoppmRasterizer renders pages with poppler's pdftoppm. Intermediate
// files live in a storage workspace, or the system temp dir when storage is
// nil.
func NewPdftoppmRasterizer(binary string, dpi int, storage StorageService) Rasterizer {
	if binary == "" {
		binary = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 300
	}
	return &pdftoppmRasterizer{binary: binary, dpi: dpi, run: execCommand, storage: storage}
}

func (r *pdftoppmRasterizer) workspace() (string, func(), error) {
	if r.storage != nil {
		return r.storage.NewWorkspace("render")
	}
	dir, err := os.MkdirTemp("", "resume-pages-")
	if err != nil {
		return "", nil, err
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

func (r *pdftoppmRasterizer) Render(ctx context.Context, filename string, data []byte) ([]models.Image, error) {
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return nil, fmt.Errorf("%w: only PDF resumes can be rendered", ErrUnsupportedFormat)
	}

	pageCount, err := PDFPageCount(data)
	if err != nil {
		return nil, err
	}

	tmpDir, cleanup, err := r.workspace()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	defer cleanup()

	input := filepath.Join(tmpDir, "resume.pdf")
	if err := os.WriteFile(input, data, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	prefix := filepath.Join(tmpDir, "page")
	if err := r.run(ctx, r.binary, "-r", strconv.Itoa(r.dpi), "-png", input, prefix); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	images, err := collectPages(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	if len(images) != pageCount {
		return nil, fmt.Errorf("%w: rendered %d images for %d pages", ErrRenderFailed, len(images), pageCount)
	}

	return images, nil
}

// collectPages reads page-<n>.png files (n may be zero padded) in page order.
func collectPages(dir string) ([]models.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var images []models.Image
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "page-") || !strings.HasSuffix(name, ".png") {
			continue
		}
		page, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "page-"), ".png"))
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		images = append(images, models.Image{Page: page, PNG: data})
	}

	sort.Slice(images, func(i, j int) bool { return images[i].Page < images[j].Page })
	return images, nil
}
