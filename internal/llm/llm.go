// Package llm генерирует значения слов и примеры употребления через провайдера
// языковой модели (OpenAI, Anthropic или Gemini).
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
	"github.com/magabrotheeeer/wordbook/internal/metrics"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

// ErrNotConfigured возвращается, если не задан ни один ключ провайдера.
var ErrNotConfigured = errors.New("no LLM API key configured")

// Языки по умолчанию.
const (
	DefaultMeaningTarget     = "Turkish"
	DefaultExampleLang       = "English"
	DefaultTranslationTarget = "Turkish"
)

const maxExamples = 2

// Provider выполняет один запрос к модели и возвращает текст ответа.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator строит промпты и разбирает ответы модели.
type Generator struct {
	provider Provider
	log      *slog.Logger
}

// NewGenerator создаёт генератор поверх провайдера.
func NewGenerator(provider Provider, log *slog.Logger) *Generator {
	return &Generator{provider: provider, log: log}
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	out, err := g.provider.Complete(ctx, prompt)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.LLMRequests.WithLabelValues(g.provider.Name(), status).Inc()
	return out, err
}

// GenerateMeaning переводит слово на targetLang. Пустой sourceLang означает,
// что язык слова определяет модель.
func (g *Generator) GenerateMeaning(ctx context.Context, word, sourceLang, targetLang string) (string, error) {
	const op = "llm.GenerateMeaning"

	source := strings.TrimSpace(sourceLang)
	target := strings.TrimSpace(targetLang)
	if target == "" {
		target = DefaultMeaningTarget
	}

	var prompt string
	if source != "" {
		prompt = fmt.Sprintf("Translate the following %s word or phrase into %s.\n"+
			"Answer ONLY with the translation (no quotes, no extra text):\n%q", source, target, word)
	} else {
		prompt = fmt.Sprintf("Detect the language of the following word or phrase and translate it into %s.\n"+
			"Answer ONLY with the translation (no quotes, no extra text):\n%q", target, word)
	}

	out, err := g.complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return cleanAnswer(out), nil
}

// GenerateExamples генерирует до двух предложений со словом на targetLang и переводит
// каждое на translationLang. Ошибка перевода отдельного предложения не прерывает
// генерацию: пример сохраняется с пустым переводом.
func (g *Generator) GenerateExamples(ctx context.Context, word, targetLang, translationLang string) ([]models.StructuredExample, error) {
	const op = "llm.GenerateExamples"

	target := strings.TrimSpace(targetLang)
	if target == "" {
		target = DefaultExampleLang
	}
	translation := strings.TrimSpace(translationLang)
	if translation == "" {
		translation = DefaultTranslationTarget
	}

	prompt := fmt.Sprintf("Generate exactly 2 natural-sounding example sentences in %s using the word or phrase %q.\n"+
		`Return ONLY a JSON array of exactly 2 strings, nothing else. Example format: ["Sentence 1.", "Sentence 2."]`,
		target, word)
	out, err := g.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sentences := ParseSentences(out)
	examples := make([]models.StructuredExample, 0, len(sentences))
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		tPrompt := fmt.Sprintf("Translate the following %s sentence into %s. "+
			"Answer ONLY with the translation (no quotes, no extra text):\n%q", target, translation, sentence)
		tr, err := g.complete(ctx, tPrompt)
		if err != nil {
			g.log.Warn("sentence translation failed", slog.String("op", op), sl.Err(err))
			examples = append(examples, models.StructuredExample{Sentence: sentence})
			continue
		}
		examples = append(examples, models.StructuredExample{Sentence: sentence, Translation: cleanAnswer(tr)})
	}
	return examples, nil
}

var (
	jsonArrayRe    = regexp.MustCompile(`(?s)\[.*?\]`)
	linePrefixRe   = regexp.MustCompile(`^[-•\d.]+\s*`)
	lineSkipRe     = regexp.MustCompile(`(?i)^(sentence|example)`)
	lineSplitterRe = regexp.MustCompile(`\n+`)
)

// ParseSentences извлекает предложения из ответа модели: сначала первый JSON-массив,
// иначе непустые строки без маркеров списка. null-элементы массива пропускаются.
// Возвращает не больше двух предложений.
func ParseSentences(reply string) []string {
	if m := jsonArrayRe.FindString(reply); m != "" {
		var raw []any
		if err := json.Unmarshal([]byte(m), &raw); err == nil && len(raw) > 0 {
			out := make([]string, 0, maxExamples)
			for _, v := range raw {
				if len(out) == maxExamples {
					break
				}
				switch v := v.(type) {
				case nil:
				case string:
					out = append(out, v)
				default:
					out = append(out, fmt.Sprint(v))
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}

	out := make([]string, 0, maxExamples)
	for _, line := range lineSplitterRe.Split(reply, -1) {
		line = linePrefixRe.ReplaceAllString(strings.TrimSpace(line), "")
		if line == "" || lineSkipRe.MatchString(line) {
			continue
		}
		out = append(out, line)
		if len(out) == maxExamples {
			break
		}
	}
	return out
}

// cleanAnswer обрезает пробелы и по одной кавычке в начале и в конце.
func cleanAnswer(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return s
}
