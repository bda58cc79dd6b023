package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/wordbook/internal/config"
)

// Имена провайдеров в конфиге.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// NewProvider выбирает провайдера: явно указанный в конфиге либо первый с заданным ключом
// в порядке OpenAI, Anthropic, Gemini. Без ключей возвращает ErrNotConfigured.
func NewProvider(ctx context.Context, cfg config.LLM) (Provider, error) {
	const op = "llm.NewProvider"

	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		switch {
		case cfg.OpenAIKey != "":
			name = ProviderOpenAI
		case cfg.AnthropicKey != "":
			name = ProviderAnthropic
		case cfg.GeminiKey != "":
			name = ProviderGemini
		default:
			return nil, ErrNotConfigured
		}
	}

	switch name {
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("%s: %s: %w", op, name, ErrNotConfigured)
		}
		return NewOpenAI(cfg.OpenAIKey, cfg.Model, cfg.BaseURL, cfg.Timeout), nil
	case ProviderAnthropic:
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("%s: %s: %w", op, name, ErrNotConfigured)
		}
		return NewAnthropic(cfg.AnthropicKey, cfg.Model, cfg.BaseURL, cfg.Timeout), nil
	case ProviderGemini:
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("%s: %s: %w", op, name, ErrNotConfigured)
		}
		g, err := NewGemini(ctx, cfg.GeminiKey, cfg.Model, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%s: unknown provider %q", op, cfg.Provider)
	}
}

// Unconfigured — провайдер-заглушка: каждый вызов возвращает ErrNotConfigured.
// Позволяет запустить сервис без ключей, ошибка появится только на LLM-маршрутах.
type Unconfigured struct{}

// Name возвращает имя для метрик.
func (Unconfigured) Name() string { return "none" }

// Complete всегда возвращает ErrNotConfigured.
func (Unconfigured) Complete(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
