package services

import (
	"context"
	"fmt"

	"alfredoptarigan/resume-critic/internal/models"
)

// TextModel generates text from a single prompt or a conversation.
type TextModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, turns []models.Turn) (string, error)
}

// VisionModel answers a conversation whose last user turn carries images.
type VisionModel interface {
	ChatWithImages(ctx context.Context, turns []models.Turn, images []models.Image) (string, error)
}

// Embedder turns text into a vector for guideline retrieval.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ModelOptions are shared by every vendor adapter.
type ModelOptions struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int
}

// ModelSet bundles the capability objects the pipeline needs. Each
// capability may use a different model of the same vendor.
type ModelSet struct {
	Chat       TextModel
	Content    TextModel
	Extraction TextModel
	Layout     VisionModel
}

type ModelSetConfig struct {
	Provider        string
	APIKey          string
	ChatModel       string
	ContentModel    string
	LayoutModel     string
	ExtractionModel string
	MaxOutputTokens int
}

// NewModelSet creates the capability objects of the configured provider.
func NewModelSet(ctx context.Context, cfg ModelSetConfig) (*ModelSet, error) {
	opts := func(model string, temperature float32) ModelOptions {
		return ModelOptions{Model: model, Temperature: temperature, MaxOutputTokens: cfg.MaxOutputTokens}
	}

	switch cfg.Provider {
	case "gemini", "":
		client, err := NewGeminiClient(ctx, cfg.APIKey)
		if err != nil {
			return nil, err
		}
		return &ModelSet{
			Chat:       NewGeminiModel(client, opts(cfg.ChatModel, 0.7)),
			Content:    NewGeminiModel(client, opts(cfg.ContentModel, 0.2)),
			Extraction: NewGeminiModel(client, opts(cfg.ExtractionModel, 0.2)),
			Layout:     NewGeminiModel(client, opts(cfg.LayoutModel, 0.2)),
		}, nil
	case "openai":
		client := NewOpenAIClient(cfg.APIKey)
		return &ModelSet{
			Chat:       NewOpenAIModel(client, opts(cfg.ChatModel, 0.7)),
			Content:    NewOpenAIModel(client, opts(cfg.ContentModel, 0.2)),
			Extraction: NewOpenAIModel(client, opts(cfg.ExtractionModel, 0.2)),
			Layout:     NewOpenAIModel(client, opts(cfg.LayoutModel, 0.2)),
		}, nil
	case "anthropic":
		client := NewAnthropicClient(cfg.APIKey)
		return &ModelSet{
			Chat:       NewAnthropicModel(client, opts(cfg.ChatModel, 0.7)),
			Content:    NewAnthropicModel(client, opts(cfg.ContentModel, 0.2)),
			Extraction: NewAnthropicModel(client, opts(cfg.ExtractionModel, 0.2)),
			Layout:     NewAnthropicModel(client, opts(cfg.LayoutModel, 0.2)),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

// splitSystem separates system turns, joined in order, from the dialogue.
func splitSystem(turns []models.Turn) (string, []models.Turn) {
	var system string
	dialogue := make([]models.Turn, 0, len(turns))
	for _, t := range turns {
		if t.Role == models.RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += t.Content
			continue
		}
		dialogue = append(dialogue, t)
	}
	return system, dialogue
}
