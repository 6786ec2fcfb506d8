package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"alfredoptarigan/resume-critic/internal/models"
)

func NewOpenAIClient(apiKey string) openai.Client {
	return openai.NewClient(option.WithAPIKey(apiKey))
}

// OpenAIModel implements TextModel and VisionModel over chat completions.
type OpenAIModel struct {
	client openai.Client
	opts   ModelOptions
}

func NewOpenAIModel(client openai.Client, opts ModelOptions) *OpenAIModel {
	return &OpenAIModel{client: client, opts: opts}
}

// Complete implements TextModel.
func (m *OpenAIModel) Complete(ctx context.Context, prompt string) (string, error) {
	return m.send(ctx, []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)})
}

// Chat implements TextModel.
func (m *OpenAIModel) Chat(ctx context.Context, turns []models.Turn) (string, error) {
	return m.send(ctx, openAIMessages(turns, -1, nil))
}

// ChatWithImages implements VisionModel.
func (m *OpenAIModel) ChatWithImages(ctx context.Context, turns []models.Turn, images []models.Image) (string, error) {
	return m.send(ctx, openAIMessages(turns, lastUserIndex(turns), images))
}

func (m *OpenAIModel) send(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(m.opts.Model),
		Messages: messages,
	}
	if m.opts.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(m.opts.MaxOutputTokens))
	}
	if m.opts.Temperature > 0 {
		params.Temperature = openai.Float(float64(m.opts.Temperature))
	}

	response, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", classifyModelError(err))
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned: %w", ErrModelUnavailable)
	}
	content := response.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("no text content in response: %w", ErrModelUnavailable)
	}
	return content, nil
}

// openAIMessages converts turns; the turn at imageAt carries the images.
func openAIMessages(turns []models.Turn, imageAt int, images []models.Image) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for i, t := range turns {
		switch t.Role {
		case models.RoleSystem:
			messages = append(messages, openai.SystemMessage(t.Content))
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(t.Content))
		default:
			if i != imageAt {
				messages = append(messages, openai.UserMessage(t.Content))
				continue
			}
			parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(t.Content)}
			for _, img := range images {
				parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(img.PNG),
					Detail: "high",
				}))
			}
			messages = append(messages, openai.UserMessage(parts))
		}
	}
	return messages
}
