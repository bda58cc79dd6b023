package models

// TranslateRequest — запрос на перевод и сохранение нового слова.
type TranslateRequest struct {
	Word       string `json:"word" validate:"max=200"`
	SourceLang string `json:"source_lang,omitempty" validate:"omitempty,max=40"`
	TargetLang string `json:"target_lang,omitempty" validate:"omitempty,max=40"`
}

// ExampleRequest — запрос на генерацию примеров для сохранённого слова.
type ExampleRequest struct {
	Word            string `json:"word" validate:"max=200"`
	TargetLang      string `json:"target_lang,omitempty" validate:"omitempty,max=40"`
	TranslationLang string `json:"translation_lang,omitempty" validate:"omitempty,max=40"`
}

// TranslateResult — ответ на перевод слова.
type TranslateResult struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}
