package transliterate

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig configures the Gemini fallback.
type GeminiConfig struct {
	APIKey  string
	Model   string // defaults to gemini-2.0-flash
	BaseURL string // empty for the public endpoint
}

// Gemini asks a Gemini model for the katakana rendering of a token.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates the Gemini fallback.
func NewGemini(ctx context.Context, config GeminiConfig) (*Gemini, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      config.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: config.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &Gemini{client: client, model: model}, nil
}

// Transliterate implements Transliterator.
func (g *Gemini) Transliterate(ctx context.Context, token string) (string, bool, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt(token)), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.2),
	})
	if err != nil {
		return "", false, fmt.Errorf("gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", false, fmt.Errorf("no response from gemini")
	}

	kana, ok := normalizeAnswer(resp.Text())
	slog.Debug("Gemini transliteration", "token", token, "kana", kana, "ok", ok)
	return kana, ok, nil
}
