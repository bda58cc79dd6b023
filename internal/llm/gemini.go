package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const geminiDefaultModel = "gemini-2.0-flash"

type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini — провайдер Google Gemini API.
type Gemini struct {
	models geminiModels
	model  string
}

// NewGemini создаёт клиента Gemini API.
func NewGemini(ctx context.Context, apiKey, model, baseURL string) (*Gemini, error) {
	const op = "llm.NewGemini"

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if model == "" {
		model = geminiDefaultModel
	}
	return &Gemini{models: client.Models, model: model}, nil
}

// Name возвращает имя провайдера для метрик.
func (p *Gemini) Name() string { return "gemini" }

// Complete отправляет промпт и возвращает текст первого кандидата.
func (p *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	const op = "llm.Gemini.Complete"

	resp, err := p.models.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return resp.Text(), nil
}
