package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/magabrotheeeer/wordbook/internal/config"
)

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		cfg      config.LLM
		wantName string
		wantErr  error
	}{
		{name: "none", cfg: config.LLM{}, wantErr: ErrNotConfigured},
		{name: "openai first", cfg: config.LLM{OpenAIKey: "o", AnthropicKey: "a"}, wantName: "openai"},
		{name: "anthropic second", cfg: config.LLM{AnthropicKey: "a"}, wantName: "anthropic"},
		{name: "explicit anthropic", cfg: config.LLM{Provider: "Anthropic", OpenAIKey: "o", AnthropicKey: "a"}, wantName: "anthropic"},
		{name: "explicit without key", cfg: config.LLM{Provider: "openai", AnthropicKey: "a"}, wantErr: ErrNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(ctx, tt.cfg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}

	_, err := NewProvider(ctx, config.LLM{Provider: "mistral", OpenAIKey: "o"})
	require.Error(t, err)
}

func TestOpenAIComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.InDelta(t, 0.2, req.Temperature, 1e-9)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "hello", req.Messages[1].Content)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"merhaba"}}]}`))
	}))
	defer srv.Close()

	out, err := NewOpenAI("key", "", srv.URL, time.Second).Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "merhaba", out)
}

func TestOpenAIComplete_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer srv.Close()

	_, err := NewOpenAI("key", "", srv.URL, time.Second).Complete(context.Background(), "hello")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, "slow down", se.Body)
}

func TestAnthropicComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 200, req.MaxTokens)
		require.Len(t, req.Messages, 1)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"koşmak"}]}`))
	}))
	defer srv.Close()

	out, err := NewAnthropic("key", "", srv.URL, time.Second).Complete(context.Background(), "run")
	require.NoError(t, err)
	assert.Equal(t, "koşmak", out)
}

type fakeGeminiModels struct {
	model  string
	prompt string
	err    error
}

func (f *fakeGeminiModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "laufen"}}},
		}},
	}, nil
}

func TestGeminiComplete(t *testing.T) {
	fake := &fakeGeminiModels{}
	p := &Gemini{models: fake, model: geminiDefaultModel}

	out, err := p.Complete(context.Background(), "run")
	require.NoError(t, err)
	assert.Equal(t, "laufen", out)
	assert.Equal(t, geminiDefaultModel, fake.model)
	assert.Equal(t, "run", fake.prompt)

	fake.err = errors.New("quota")
	_, err = p.Complete(context.Background(), "run")
	require.Error(t, err)
}

func TestUnconfigured(t *testing.T) {
	_, err := Unconfigured{}.Complete(context.Background(), "x")
	require.ErrorIs(t, err, ErrNotConfigured)
}
