package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openAIURL          = "https://api.openai.com/v1"
	openAIDefaultModel = "gpt-4o-mini"
	temperature        = 0.2
)

// OpenAI — провайдер chat completions API.
type OpenAI struct {
	apiKey     string
	model      string
	apiURL     string
	httpClient *http.Client
}

// NewOpenAI создаёт провайдера. Пустые model и baseURL заменяются значениями по умолчанию.
func NewOpenAI(apiKey, model, baseURL string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = openAIDefaultModel
	}
	if baseURL == "" {
		baseURL = openAIURL
	}
	return &OpenAI{
		apiKey:     apiKey,
		model:      model,
		apiURL:     strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name возвращает имя провайдера для метрик.
func (p *OpenAI) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete отправляет промпт как сообщение пользователя.
func (p *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	const op = "llm.OpenAI.Complete"

	body := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful assistant."},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
	}
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}

	var resp chatResponse
	if err := postJSON(ctx, p.httpClient, p.apiURL+"/chat/completions", headers, body, &resp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// StatusError — неуспешный ответ API провайдера.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, in, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
