package export

import (
	"strings"
	"time"

	"github.com/magabrotheeeer/wordbook/internal/models"
)

const csvHeader = "id,user_id,word,meaning,examples,notes,created_at"

// ToCSV форматирует слова в CSV. Скалярные поля берутся в кавычки, только если
// содержат запятую, кавычку или перевод строки; examples всегда в кавычках как JSON-массив,
// кроме NULL, который остаётся пустым полем. Строки разделяются "\n" без завершающего перевода.
func ToCSV(words []models.Word) string {
	var b strings.Builder
	b.WriteString(csvHeader)
	for _, w := range words {
		b.WriteByte('\n')
		b.WriteString(quoteIfNeeded(w.ID))
		b.WriteByte(',')
		b.WriteString(quoteIfNeeded(w.UserID))
		b.WriteByte(',')
		b.WriteString(quoteIfNeeded(w.Word))
		b.WriteByte(',')
		b.WriteString(quoteIfNeeded(deref(w.Meaning)))
		b.WriteByte(',')
		b.WriteString(examplesField(w.Examples))
		b.WriteByte(',')
		b.WriteString(quoteIfNeeded(deref(w.Notes)))
		b.WriteByte(',')
		b.WriteString(quoteIfNeeded(w.CreatedAt.UTC().Format(time.RFC3339Nano)))
	}
	return b.String()
}

func quoteIfNeeded(v string) string {
	if !strings.ContainsAny(v, ",\"\n\r") {
		return v
	}
	return quote(v)
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

func examplesField(ex models.Examples) string {
	if ex == nil {
		return ""
	}
	raw, err := ex.MarshalJSON()
	if err != nil {
		return `"[]"`
	}
	return quote(string(raw))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
