package models

import "time"

// WordGroup — пользовательская группа слов.
type WordGroup struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// WordGroupAssignment — результат перемещения слова в группу.
type WordGroupAssignment struct {
	ID      string  `json:"id"`
	Word    string  `json:"word"`
	Meaning *string `json:"meaning"`
	GroupID *string `json:"group_id"`
}

// GroupRequest используется для приёма названия группы из JSON-запроса.
type GroupRequest struct {
	Name string `json:"name" validate:"max=100"`
}
