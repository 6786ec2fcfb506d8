package services

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"alfredoptarigan/resume-critic/internal/models"
)

func NewAnthropicClient(apiKey string) anthropic.Client {
	return anthropic.NewClient(option.WithAPIKey(apiKey))
}

// AnthropicModel implements TextModel and VisionModel over the Messages API.
type AnthropicModel struct {
	client anthropic.Client
	opts   ModelOptions
}

func NewAnthropicModel(client anthropic.Client, opts ModelOptions) *AnthropicModel {
	return &AnthropicModel{client: client, opts: opts}
}

// Complete implements TextModel.
func (m *AnthropicModel) Complete(ctx context.Context, prompt string) (string, error) {
	return m.Chat(ctx, []models.Turn{{Role: models.RoleUser, Content: prompt}})
}

// Chat implements TextModel.
func (m *AnthropicModel) Chat(ctx context.Context, turns []models.Turn) (string, error) {
	return m.ChatWithImages(ctx, turns, nil)
}

// ChatWithImages implements VisionModel.
func (m *AnthropicModel) ChatWithImages(ctx context.Context, turns []models.Turn, images []models.Image) (string, error) {
	system, dialogue := splitSystem(turns)
	last := lastUserIndex(dialogue)

	messages := make([]anthropic.MessageParam, 0, len(dialogue))
	for i, t := range dialogue {
		if t.Role == models.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
			continue
		}
		blocks := []anthropic.ContentBlockParamUnion{}
		if i == last {
			for _, img := range images {
				blocks = append(blocks, anthropic.NewImageBlockBase64("image/png", base64.StdEncoding.EncodeToString(img.PNG)))
			}
		}
		blocks = append(blocks, anthropic.NewTextBlock(t.Content))
		messages = append(messages, anthropic.NewUserMessage(blocks...))
	}

	maxTokens := m.opts.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.opts.Model),
		Messages:  messages,
		MaxTokens: int64(maxTokens),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if m.opts.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(m.opts.Temperature))
	}

	response, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", classifyModelError(err))
	}

	content := ""
	for _, block := range response.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += b.Text
		}
	}
	if content == "" {
		return "", fmt.Errorf("no text content in response: %w", ErrModelUnavailable)
	}
	return content, nil
}
