// Package export выгружает слова пользователя в JSON или CSV.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/wordbook/internal/events"
	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/metrics"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

// Format — формат выгрузки.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat разбирает параметр format без учёта регистра. Пустое значение — json.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", apperr.New(apperr.CodeInvalidFormat, "format must be 'json' or 'csv'")
}

// Repository — чтение слов пользователя.
type Repository interface {
	ListWords(ctx context.Context, userID string, groupID *string) ([]models.Word, error)
}

// Gate проверяет возможность по тарифному плану.
type Gate interface {
	Require(ctx context.Context, userID string, action models.Action) error
}

// Result — результат выгрузки. Для CSV заполнены Body и Filename, для JSON — Words.
type Result struct {
	Format   Format
	Words    []models.Word
	Body     string
	Filename string
}

// Service выгружает слова.
type Service struct {
	repo   Repository
	gate   Gate
	events events.Publisher
	log    *slog.Logger
}

// NewService создаёт сервис выгрузки.
func NewService(repo Repository, gate Gate, publisher events.Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		gate:   gate,
		events: publisher,
		log:    log,
	}
}

// Export проверяет право на выгрузку, читает слова (с фильтром по группе, если он задан)
// и форматирует их.
func (s *Service) Export(ctx context.Context, userID string, format Format, rawGroupID string) (*Result, error) {
	const op = "services.export.Export"

	if err := s.gate.Require(ctx, userID, models.ActionExport); err != nil {
		return nil, err
	}

	var groupID *string
	if rawGroupID != "" {
		if _, err := uuid.Parse(rawGroupID); err != nil {
			return nil, apperr.New(apperr.CodeInvalidRequest, "group_id must be a valid UUID")
		}
		groupID = &rawGroupID
	}

	words, err := s.repo.ListWords(ctx, userID, groupID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to load words", fmt.Errorf("%s: %w", op, err))
	}
	for i := range words {
		words[i].CreatedAt = words[i].CreatedAt.UTC()
	}

	res := &Result{Format: format, Words: words}
	if format == FormatCSV {
		res.Body = ToCSV(words)
		res.Filename = filename(groupID)
	}

	metrics.Exports.WithLabelValues(string(format)).Inc()
	events.Emit(ctx, s.events, s.log, events.New(events.TypeExportCompleted, userID, events.ExportCompleted{
		Format:  string(format),
		GroupID: groupID,
		Words:   len(words),
	}))
	s.log.Info("words exported",
		slog.String("op", op),
		slog.String("user_id", userID),
		slog.String("format", string(format)),
		slog.Int("count", len(words)))

	return res, nil
}

func filename(groupID *string) string {
	if groupID == nil {
		return "words.csv"
	}
	return "words_group_" + *groupID + ".csv"
}
