// Package validate настраивает валидатор запросов: в сообщениях об ошибках
// используются имена полей из json-тегов.
package validate

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator"
)

// New создаёт валидатор, который называет поля так же, как клиент видит их в JSON.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}
