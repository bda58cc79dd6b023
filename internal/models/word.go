// Package models содержит доменные структуры словаря: слова, примеры употребления,
// группы слов, тарифные планы и назначения планов пользователям.
package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Word представляет сохранённое пользователем слово.
// Meaning и Notes могут быть nil (NULL в базе), GroupID — nil, если слово вне группы
// или колонка group_id ещё не создана миграцией.
type Word struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Word      string    `json:"word"`
	Meaning   *string   `json:"meaning"`
	Examples  Examples  `json:"examples"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	GroupID   *string   `json:"group_id,omitempty"`
}

// ExampleEntry — пример употребления слова. Реализации: LegacyExample (старый формат,
// просто строка), StructuredExample (предложение с переводом) и OpaqueExample
// (любое другое JSON-значение, записанное в массив сторонним клиентом).
type ExampleEntry interface {
	exampleEntry()
}

// LegacyExample — пример, сохранённый старой версией приложения как обычная строка.
type LegacyExample string

// StructuredExample — пример с переводом.
type StructuredExample struct {
	Sentence    string `json:"sentence"`
	Translation string `json:"translation"`
}

// OpaqueExample — элемент массива, который не строка и не объект. Хранится и
// отдаётся как есть, Normalize его пропускает.
type OpaqueExample json.RawMessage

func (LegacyExample) exampleEntry()     {}
func (StructuredExample) exampleEntry() {}
func (OpaqueExample) exampleEntry()     {}

// ErrExamplesNotArray возвращается, когда значение examples не JSON-массив и не null.
var ErrExamplesNotArray = errors.New("models: examples must be an array")

// Examples — список примеров слова. nil означает NULL в базе, пустой срез — пустой массив.
type Examples []ExampleEntry

// MarshalJSON сериализует примеры в исходном виде: строки остаются строками,
// структурированные примеры — объектами.
func (e Examples) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('[')
	for i, entry := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		switch v := entry.(type) {
		case LegacyExample:
			if err := enc.Encode(string(v)); err != nil {
				return nil, err
			}
		case StructuredExample:
			if err := enc.Encode(v); err != nil {
				return nil, err
			}
		case OpaqueExample:
			buf.Write(v)
			continue
		default:
			return nil, fmt.Errorf("models: unsupported example entry %T", entry)
		}
		// Encoder добавляет перевод строки после каждого значения.
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON разбирает массив, в котором могут встречаться и строки, и объекты.
func (e *Examples) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*e = nil
		return nil
	}

	if len(data) == 0 || data[0] != '[' {
		return ErrExamplesNotArray
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrExamplesNotArray, err)
	}

	out := make(Examples, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		switch {
		case len(item) > 0 && item[0] == '"':
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return err
			}
			out = append(out, LegacyExample(s))
		case len(item) > 0 && item[0] == '{':
			var se StructuredExample
			if err := json.Unmarshal(item, &se); err != nil {
				return err
			}
			out = append(out, se)
		default:
			out = append(out, OpaqueExample(append(json.RawMessage(nil), item...)))
		}
	}
	*e = out
	return nil
}

// Normalize приводит все примеры к структурированному виду.
// Строки старого формата становятся примерами с пустым переводом.
func (e Examples) Normalize() []StructuredExample {
	out := make([]StructuredExample, 0, len(e))
	for _, entry := range e {
		switch v := entry.(type) {
		case LegacyExample:
			out = append(out, StructuredExample{Sentence: string(v)})
		case StructuredExample:
			out = append(out, v)
		}
	}
	return out
}

// NewExamples собирает Examples из структурированных примеров.
func NewExamples(items []StructuredExample) Examples {
	out := make(Examples, 0, len(items))
	for _, it := range items {
		out = append(out, it)
	}
	return out
}

// Scan читает jsonb-колонку examples. NULL становится nil.
func (e *Examples) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*e = nil
		return nil
	case []byte:
		return e.UnmarshalJSON(v)
	case string:
		return e.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("models: cannot scan %T into Examples", src)
	}
}

// Value записывает примеры в jsonb-колонку.
func (e Examples) Value() (driver.Value, error) {
	if e == nil {
		return nil, nil
	}
	b, err := e.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
