package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"alfredoptarigan/resume-critic/internal/models"
)

func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// GeminiModel implements TextModel and VisionModel on one Gemini model.
type GeminiModel struct {
	client *genai.Client
	opts   ModelOptions
}

func NewGeminiModel(client *genai.Client, opts ModelOptions) *GeminiModel {
	return &GeminiModel{client: client, opts: opts}
}

func (g *GeminiModel) config(system string) *genai.GenerateContentConfig {
	temperature := g.opts.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(g.opts.MaxOutputTokens),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	return config
}

// Complete implements TextModel.
func (g *GeminiModel) Complete(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, genai.Text(prompt), g.config(""))
}

// Chat implements TextModel.
func (g *GeminiModel) Chat(ctx context.Context, turns []models.Turn) (string, error) {
	system, dialogue := splitSystem(turns)
	contents := make([]*genai.Content, 0, len(dialogue))
	for _, t := range dialogue {
		contents = append(contents, genai.NewContentFromText(t.Content, geminiRole(t.Role)))
	}
	return g.generate(ctx, contents, g.config(system))
}

// ChatWithImages implements VisionModel. Images are attached to the last
// user turn.
func (g *GeminiModel) ChatWithImages(ctx context.Context, turns []models.Turn, images []models.Image) (string, error) {
	system, dialogue := splitSystem(turns)
	last := lastUserIndex(dialogue)

	contents := make([]*genai.Content, 0, len(dialogue))
	for i, t := range dialogue {
		if i != last {
			contents = append(contents, genai.NewContentFromText(t.Content, geminiRole(t.Role)))
			continue
		}
		parts := []*genai.Part{genai.NewPartFromText(t.Content)}
		for _, img := range images {
			parts = append(parts, genai.NewPartFromBytes(img.PNG, "image/png"))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}
	return g.generate(ctx, contents, g.config(system))
}

func (g *GeminiModel) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.opts.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", classifyModelError(err))
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response): %w", ErrModelUnavailable)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response: %w", ErrModelUnavailable)
	}
	return text, nil
}

// GeminiEmbedder implements Embedder.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	return &GeminiEmbedder{client: client, model: model}
}

func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", classifyModelError(err))
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

func geminiRole(role models.Role) genai.Role {
	if role == models.RoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}

func lastUserIndex(turns []models.Turn) int {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == models.RoleUser {
			return i
		}
	}
	return -1
}
