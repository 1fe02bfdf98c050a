package translate

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"google.golang.org/genai"
)

// GeminiTranslator implements Translator using Google's Gemini API
type GeminiTranslator struct {
	client *genai.Client
	model  string
}

// NewGeminiTranslator creates a Gemini-backed translator
func NewGeminiTranslator(ctx context.Context, apiKey, model string) (*GeminiTranslator, error) {
	if apiKey == "" {
		return nil, errors.Errorf("api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, errors.Errorf("creating genai client: %w", err)
	}

	return &GeminiTranslator{client: client, model: model}, nil
}

// Translate implements Translator
func (t *GeminiTranslator) Translate(ctx context.Context, req Request) (string, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("file", req.Filename).
		Str("source", string(req.SourcePlatform)).
		Str("target", string(req.TargetPlatform)).
		Str("model", t.model).
		Msg("requesting translation")

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction(req.SourcePlatform, req.TargetPlatform), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.1),
		MaxOutputTokens:   4000,
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(BuildPrompt(req)), cfg)
	if err != nil {
		return "", errors.Errorf("generating content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.Errorf("empty response from model")
	}
	return text, nil
}
