package services

import (
	"context"
	"errors"
	"sync"

	"alfredoptarigan/resume-critic/internal/models"
)

type stubTextModel struct {
	mu       sync.Mutex
	prompts  []string
	chats    [][]models.Turn
	complete func(ctx context.Context, prompt string) (string, error)
	chat     func(ctx context.Context, turns []models.Turn) (string, error)
}

func (m *stubTextModel) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.complete == nil {
		return "", errors.New("unexpected Complete call")
	}
	return m.complete(ctx, prompt)
}

func (m *stubTextModel) Chat(ctx context.Context, turns []models.Turn) (string, error) {
	m.mu.Lock()
	m.chats = append(m.chats, turns)
	m.mu.Unlock()
	if m.chat == nil {
		return "", errors.New("unexpected Chat call")
	}
	return m.chat(ctx, turns)
}

func (m *stubTextModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

func replyWith(text string) func(context.Context, string) (string, error) {
	return func(context.Context, string) (string, error) { return text, nil }
}

func failWith(err error) func(context.Context, string) (string, error) {
	return func(context.Context, string) (string, error) { return "", err }
}

type stubVisionModel struct {
	mu     sync.Mutex
	turns  [][]models.Turn
	images int
	reply  func(ctx context.Context, turns []models.Turn, images []models.Image) (string, error)
}

func (m *stubVisionModel) ChatWithImages(ctx context.Context, turns []models.Turn, images []models.Image) (string, error) {
	m.mu.Lock()
	m.turns = append(m.turns, turns)
	m.images = len(images)
	m.mu.Unlock()
	return m.reply(ctx, turns, images)
}

func visionReply(text string) func(context.Context, []models.Turn, []models.Image) (string, error) {
	return func(context.Context, []models.Turn, []models.Image) (string, error) { return text, nil }
}

// blockUntilDone waits for the deadline of the call.
func blockUntilDone(ctx context.Context, _ []models.Turn, _ []models.Image) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type stubRasterizer struct {
	err error
}

// Render returns one image per PDF page.
func (r *stubRasterizer) Render(_ context.Context, _ string, data []byte) ([]models.Image, error) {
	if r.err != nil {
		return nil, r.err
	}
	pages, err := PDFPageCount(data)
	if err != nil {
		return nil, err
	}
	images := make([]models.Image, pages)
	for i := range images {
		images[i] = models.Image{Page: i + 1, PNG: []byte("png")}
	}
	return images, nil
}

type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	page, ok := f.pages[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(page), nil
}
