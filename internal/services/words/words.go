// Package words сохраняет слова пользователя, получает их значения и примеры
// от языковой модели и распределяет слова по группам.
package words

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/wordbook/internal/events"
	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
	"github.com/magabrotheeeer/wordbook/internal/llm"
	"github.com/magabrotheeeer/wordbook/internal/models"
	"github.com/magabrotheeeer/wordbook/internal/storage"
)

// MsgGroupsNotSetUp — ответ, когда таблицы групп ещё не созданы миграцией.
const MsgGroupsNotSetUp = "Groups feature is not set up. Please run the database migration first."

// Repository — операции хранилища со словами и группами.
type Repository interface {
	ListWords(ctx context.Context, userID string, groupID *string) ([]models.Word, error)
	CreateWord(ctx context.Context, userID, word, meaning string) (*models.Word, error)
	FindWordByText(ctx context.Context, userID, text string) (*models.Word, error)
	UpdateWordExamples(ctx context.Context, userID, wordID string, examples models.Examples) error
	WordExists(ctx context.Context, userID, wordID string) (bool, error)
	GetGroup(ctx context.Context, userID, groupID string) (*models.WordGroup, error)
	SetWordGroup(ctx context.Context, userID, wordID string, groupID *string) (*models.WordGroupAssignment, error)
}

// Gate проверяет возможность по тарифному плану.
type Gate interface {
	Require(ctx context.Context, userID string, action models.Action) error
}

// Generator получает тексты от языковой модели.
type Generator interface {
	GenerateMeaning(ctx context.Context, word, sourceLang, targetLang string) (string, error)
	GenerateExamples(ctx context.Context, word, targetLang, translationLang string) ([]models.StructuredExample, error)
}

// MeaningCache кэширует значения слов.
type MeaningCache interface {
	GetMeaning(ctx context.Context, sourceLang, targetLang, word string) (string, bool, error)
	SetMeaning(ctx context.Context, sourceLang, targetLang, word, meaning string) error
}

// Service реализует операции со словами.
type Service struct {
	repo   Repository
	gate   Gate
	gen    Generator
	cache  MeaningCache
	events events.Publisher
	log    *slog.Logger
}

// NewService создаёт сервис слов.
func NewService(repo Repository, gate Gate, gen Generator, cache MeaningCache, publisher events.Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		gate:   gate,
		gen:    gen,
		cache:  cache,
		events: publisher,
		log:    log,
	}
}

func llmError(msg string, err error) error {
	if errors.Is(err, llm.ErrNotConfigured) {
		return apperr.Wrap(apperr.CodeInternal, "No LLM API key configured", err)
	}
	return apperr.Wrap(apperr.CodeInternal, msg, err)
}

// Translate получает значение слова и сохраняет слово в словарь пользователя.
func (s *Service) Translate(ctx context.Context, userID string, req models.TranslateRequest) (*models.TranslateResult, error) {
	const op = "services.words.Translate"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	word := strings.TrimSpace(req.Word)
	if word == "" {
		return nil, apperr.New(apperr.CodeInvalidRequest, "'word' is required")
	}
	if err := s.gate.Require(ctx, userID, models.ActionAddWord); err != nil {
		return nil, err
	}

	meaning, err := s.meaning(ctx, log, word, req.SourceLang, req.TargetLang)
	if err != nil {
		return nil, llmError("Failed to generate meaning", fmt.Errorf("%s: %w", op, err))
	}

	created, err := s.repo.CreateWord(ctx, userID, word, meaning)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to save word", fmt.Errorf("%s: %w", op, err))
	}

	events.Emit(ctx, s.events, log, events.New(events.TypeWordCreated, userID, events.WordCreated{
		WordID: created.ID,
		Word:   created.Word,
	}))
	log.Info("word saved", slog.String("word_id", created.ID))
	return &models.TranslateResult{Word: word, Meaning: meaning}, nil
}

// meaning берёт значение из кэша, а при промахе запрашивает модель и кэширует ответ.
// Ошибки кэша не прерывают перевод.
func (s *Service) meaning(ctx context.Context, log *slog.Logger, word, sourceLang, targetLang string) (string, error) {
	target := strings.TrimSpace(targetLang)
	if target == "" {
		target = llm.DefaultMeaningTarget
	}

	cached, found, err := s.cache.GetMeaning(ctx, sourceLang, target, word)
	if err != nil {
		log.Warn("meaning cache read failed", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	meaning, err := s.gen.GenerateMeaning(ctx, word, sourceLang, target)
	if err != nil {
		return "", err
	}
	if err := s.cache.SetMeaning(ctx, sourceLang, target, word, meaning); err != nil {
		log.Warn("meaning cache write failed", sl.Err(err))
	}
	return meaning, nil
}

// GenerateExamples генерирует примеры для сохранённого слова, добавляет их к уже
// сохранённым и возвращает только новые примеры.
func (s *Service) GenerateExamples(ctx context.Context, userID string, req models.ExampleRequest) ([]models.StructuredExample, error) {
	const op = "services.words.GenerateExamples"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	word := strings.TrimSpace(req.Word)
	if word == "" {
		return nil, apperr.New(apperr.CodeInvalidRequest, "'word' is required")
	}

	existing, err := s.repo.FindWordByText(ctx, userID, word)
	switch {
	case storage.IsNotFound(err):
		return nil, apperr.New(apperr.CodeNotFound, "Word not found")
	case err != nil:
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to load word", fmt.Errorf("%s: %w", op, err))
	}

	generated, err := s.gen.GenerateExamples(ctx, word, req.TargetLang, req.TranslationLang)
	if err != nil {
		return nil, llmError("Failed to generate examples", fmt.Errorf("%s: %w", op, err))
	}

	merged := append(existing.Examples.Normalize(), generated...)
	if err := s.repo.UpdateWordExamples(ctx, userID, existing.ID, models.NewExamples(merged)); err != nil {
		if storage.IsNotFound(err) {
			return nil, apperr.New(apperr.CodeNotFound, "Word not found")
		}
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to save examples", fmt.Errorf("%s: %w", op, err))
	}

	events.Emit(ctx, s.events, log, events.New(events.TypeExamplesGenerated, userID, events.ExamplesGenerated{
		WordID: existing.ID,
		Added:  len(generated),
		Total:  len(merged),
	}))
	log.Info("examples generated", slog.String("word_id", existing.ID), slog.Int("added", len(generated)))
	return generated, nil
}

// List возвращает слова пользователя по возрастанию даты создания. Фильтр по группе
// не применяется, если колонки group_id нет в базе.
func (s *Service) List(ctx context.Context, userID, rawGroupID string) ([]models.Word, error) {
	const op = "services.words.List"

	groupID, err := parseGroupID(rawGroupID)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.ListWords(ctx, userID, groupID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to load words", fmt.Errorf("%s: %w", op, err))
	}
	if list == nil {
		list = []models.Word{}
	}
	return list, nil
}

// SetGroup перемещает слово в группу или убирает из неё (groupID == nil).
func (s *Service) SetGroup(ctx context.Context, userID, wordID string, groupID *string) (*models.WordGroupAssignment, error) {
	const op = "services.words.SetGroup"
	log := s.log.With(slog.String("op", op), slog.String("user_id", userID))

	if !isUUID(wordID) {
		return nil, apperr.New(apperr.CodeNotFound, "Word not found")
	}
	ok, err := s.repo.WordExists(ctx, userID, wordID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to load word", fmt.Errorf("%s: %w", op, err))
	}
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "Word not found")
	}

	if groupID != nil {
		if !isUUID(*groupID) {
			return nil, apperr.New(apperr.CodeNotFound, "Group not found")
		}
		_, err := s.repo.GetGroup(ctx, userID, *groupID)
		switch {
		case storage.IsNotFound(err):
			return nil, apperr.New(apperr.CodeNotFound, "Group not found")
		case storage.IsSchemaMissing(err):
			return nil, apperr.Wrap(apperr.CodeFeatureNotAvailable, MsgGroupsNotSetUp, err)
		case err != nil:
			return nil, apperr.Wrap(apperr.CodeDBError, "Failed to load group", fmt.Errorf("%s: %w", op, err))
		}
	}

	assignment, err := s.repo.SetWordGroup(ctx, userID, wordID, groupID)
	switch {
	case storage.IsNotFound(err):
		return nil, apperr.New(apperr.CodeNotFound, "Word not found")
	case storage.IsSchemaMissing(err):
		return nil, apperr.Wrap(apperr.CodeFeatureNotAvailable, MsgGroupsNotSetUp, err)
	case err != nil:
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to update word", fmt.Errorf("%s: %w", op, err))
	}
	log.Info("word group changed", slog.String("word_id", wordID))
	return assignment, nil
}

func parseGroupID(raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if !isUUID(raw) {
		return nil, apperr.New(apperr.CodeInvalidRequest, "group_id must be a valid UUID")
	}
	return &raw, nil
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
