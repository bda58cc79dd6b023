package models

// Action — действие, доступ к которому ограничивается тарифным планом.
type Action string

const (
	ActionAddWord         Action = "add_word"
	ActionExport          Action = "export"
	ActionUseGroups       Action = "use_groups"
	ActionAccessExercises Action = "access_exercises"
)

// Valid проверяет, что действие известно.
func (a Action) Valid() bool {
	switch a {
	case ActionAddWord, ActionExport, ActionUseGroups, ActionAccessExercises:
		return true
	}
	return false
}

// Decision — результат проверки возможности. Message заполняется только при отказе.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Message string `json:"message,omitempty"`
}
