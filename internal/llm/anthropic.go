package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicURL          = "https://api.anthropic.com/v1"
	anthropicVersion      = "2023-06-01"
	anthropicDefaultModel = "claude-3-5-sonnet-20241022"
	anthropicMaxTokens    = 200
)

// Anthropic — провайдер messages API.
type Anthropic struct {
	apiKey     string
	model      string
	apiURL     string
	httpClient *http.Client
}

// NewAnthropic создаёт провайдера. Пустые model и baseURL заменяются значениями по умолчанию.
func NewAnthropic(apiKey, model, baseURL string, timeout time.Duration) *Anthropic {
	if model == "" {
		model = anthropicDefaultModel
	}
	if baseURL == "" {
		baseURL = anthropicURL
	}
	return &Anthropic{
		apiKey:     apiKey,
		model:      model,
		apiURL:     strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name возвращает имя провайдера для метрик.
func (p *Anthropic) Name() string { return "anthropic" }

type messagesRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete отправляет промпт одним сообщением пользователя и возвращает первый блок текста.
func (p *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	const op = "llm.Anthropic.Complete"

	body := messagesRequest{
		Model:       p.model,
		MaxTokens:   anthropicMaxTokens,
		Temperature: temperature,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var resp messagesResponse
	if err := postJSON(ctx, p.httpClient, p.apiURL+"/messages", headers, body, &resp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(resp.Content) == 0 {
		return "", nil
	}
	return resp.Content[0].Text, nil
}
