// Package groups управляет пользовательскими группами слов.
package groups

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/models"
	"github.com/magabrotheeeer/wordbook/internal/storage"
)

const msgNotSetUp = "Groups feature is not set up. Please run the database migration first."

// Repository — операции хранилища с группами.
type Repository interface {
	ListGroups(ctx context.Context, userID string) ([]models.WordGroup, error)
	CreateGroup(ctx context.Context, userID, name string) (*models.WordGroup, error)
	RenameGroup(ctx context.Context, userID, groupID, name string) (*models.WordGroup, error)
	DeleteGroup(ctx context.Context, userID, groupID string) error
}

// Gate проверяет возможность по тарифному плану.
type Gate interface {
	Require(ctx context.Context, userID string, action models.Action) error
}

// Service реализует операции с группами. Просмотр групп доступен на любом плане,
// изменение требует возможности use_groups.
type Service struct {
	repo Repository
	gate Gate
	log  *slog.Logger
}

// NewService создаёт сервис групп.
func NewService(repo Repository, gate Gate, log *slog.Logger) *Service {
	return &Service{repo: repo, gate: gate, log: log}
}

// mapErr переводит ошибку хранилища в ошибку API.
func mapErr(op, msg string, err error) error {
	switch {
	case storage.IsNotFound(err):
		return apperr.New(apperr.CodeNotFound, "Group not found")
	case storage.IsSchemaMissing(err):
		return apperr.Wrap(apperr.CodeFeatureNotAvailable, msgNotSetUp, err)
	default:
		return apperr.Wrap(apperr.CodeDBError, msg, fmt.Errorf("%s: %w", op, err))
	}
}

// List возвращает группы пользователя, новые первыми. Без таблицы групп — пустой список.
func (s *Service) List(ctx context.Context, userID string) ([]models.WordGroup, error) {
	const op = "services.groups.List"

	list, err := s.repo.ListGroups(ctx, userID)
	if storage.IsSchemaMissing(err) {
		return []models.WordGroup{}, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeDBError, "Failed to load groups", fmt.Errorf("%s: %w", op, err))
	}
	if list == nil {
		list = []models.WordGroup{}
	}
	return list, nil
}

func (s *Service) prepare(ctx context.Context, userID, name string, needName bool) (string, error) {
	if err := s.gate.Require(ctx, userID, models.ActionUseGroups); err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if needName && name == "" {
		return "", apperr.New(apperr.CodeInvalidRequest, "'name' is required")
	}
	return name, nil
}

// Create создаёт группу.
func (s *Service) Create(ctx context.Context, userID, name string) (*models.WordGroup, error) {
	const op = "services.groups.Create"

	name, err := s.prepare(ctx, userID, name, true)
	if err != nil {
		return nil, err
	}
	g, err := s.repo.CreateGroup(ctx, userID, name)
	if err != nil {
		return nil, mapErr(op, "Failed to create group", err)
	}
	s.log.Info("group created", slog.String("op", op), slog.String("user_id", userID), slog.String("group_id", g.ID))
	return g, nil
}

// Rename переименовывает группу пользователя.
func (s *Service) Rename(ctx context.Context, userID, groupID, name string) (*models.WordGroup, error) {
	const op = "services.groups.Rename"

	name, err := s.prepare(ctx, userID, name, true)
	if err != nil {
		return nil, err
	}
	if !isUUID(groupID) {
		return nil, apperr.New(apperr.CodeNotFound, "Group not found")
	}
	g, err := s.repo.RenameGroup(ctx, userID, groupID, name)
	if err != nil {
		return nil, mapErr(op, "Failed to update group", err)
	}
	return g, nil
}

// Delete удаляет группу. Слова группы остаются в словаре без группы.
func (s *Service) Delete(ctx context.Context, userID, groupID string) error {
	const op = "services.groups.Delete"

	if _, err := s.prepare(ctx, userID, "", false); err != nil {
		return err
	}
	if !isUUID(groupID) {
		return apperr.New(apperr.CodeNotFound, "Group not found")
	}
	if err := s.repo.DeleteGroup(ctx, userID, groupID); err != nil {
		return mapErr(op, "Failed to delete group", err)
	}
	s.log.Info("group deleted", slog.String("op", op), slog.String("user_id", userID), slog.String("group_id", groupID))
	return nil
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
