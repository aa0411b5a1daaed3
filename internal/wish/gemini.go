package wish

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// contentModels is the part of genai.Models used here.
type contentModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini generates wishes with Google's Gemini API.
type Gemini struct {
	models      contentModels
	model       string
	temperature float32
}

// NewGemini creates a Gemini-backed generator.
func NewGemini(ctx context.Context, apiKey, model string, temperature float32) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-3-flash-preview"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return newGemini(client.Models, model, temperature), nil
}

func newGemini(models contentModels, model string, temperature float32) *Gemini {
	return &Gemini{
		models:      models,
		model:       model,
		temperature: temperature,
	}
}

// Wish asks the model for a one-line wish.
func (g *Gemini) Wish(ctx context.Context, amount int, label string) (string, error) {
	resp, err := g.models.GenerateContent(ctx,
		g.model,
		genai.Text(buildPrompt(amount, label)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			Temperature:       genai.Ptr(g.temperature),
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %w", ErrUpstream, err)
	}
	if resp == nil {
		return "", ErrEmptyWish
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyWish
	}
	return text, nil
}
