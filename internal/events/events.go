// Package events публикует доменные события словаря в RabbitMQ.
// Публикация best-effort: ошибка логируется и не влияет на ответ клиенту.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
)

// Типы событий. Используются и как routing key.
const (
	TypeWordCreated       = "word.created"
	TypeExamplesGenerated = "examples.generated"
	TypeExportCompleted   = "export.completed"
)

// Event — доменное событие.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// WordCreated — полезная нагрузка word.created.
type WordCreated struct {
	WordID string `json:"word_id"`
	Word   string `json:"word"`
}

// ExamplesGenerated — полезная нагрузка examples.generated.
type ExamplesGenerated struct {
	WordID string `json:"word_id"`
	Added  int    `json:"added"`
	Total  int    `json:"total"`
}

// ExportCompleted — полезная нагрузка export.completed.
type ExportCompleted struct {
	Format  string  `json:"format"`
	GroupID *string `json:"group_id,omitempty"`
	Words   int     `json:"words"`
}

// Publisher публикует события.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// New создаёт событие с текущим временем.
func New(eventType, userID string, payload any) Event {
	return Event{
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Emit публикует событие и логирует ошибку вместо того, чтобы вернуть её.
func Emit(ctx context.Context, p Publisher, log *slog.Logger, ev Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Warn("failed to publish event", slog.String("type", ev.Type), sl.Err(err))
	}
}

// Nop — публикатор, который ничего не делает. Используется, когда RabbitMQ не настроен.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
