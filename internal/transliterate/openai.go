package transliterate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures the OpenAI fallback.
type OpenAIConfig struct {
	APIKey  string
	Model   string // defaults to gpt-4o-mini
	BaseURL string // optional, for OpenAI compatible servers
}

// OpenAI asks an OpenAI chat model for the katakana rendering of a token.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates the OpenAI fallback.
func NewOpenAI(config OpenAIConfig) (*OpenAI, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	model := config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// Transliterate implements Transliterator.
func (o *OpenAI) Transliterate(ctx context.Context, token string) (string, bool, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You transliterate foreign words into Japanese katakana for a speech synthesizer.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt(token),
			},
		},
		MaxTokens:   50,
		Temperature: 0.2,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", false, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", false, fmt.Errorf("no response from OpenAI")
	}

	kana, ok := normalizeAnswer(resp.Choices[0].Message.Content)
	slog.Debug("OpenAI transliteration", "token", token, "kana", kana, "ok", ok)
	return kana, ok, nil
}
