// Package response формирует JSON-ответы HTTP-обработчиков.
// Ошибки отдаются в едином конверте {"error":{"code","message"}}.
package response

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
)

// ErrorBody — содержимое поля error.
type ErrorBody struct {
	Code    string `json:"code" example:"invalid_request"`
	Message string `json:"message" example:"Word is required"`
}

// ErrorResponse — тело ответа с ошибкой. Используется и в аннотациях @Failure.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error возвращает тело ответа с кодом и сообщением.
func Error(code apperr.Code, msg string) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: string(code), Message: msg}}
}

// Fail пишет ошибку в ответ. Структурированные ошибки отдаются со своим кодом и статусом,
// остальные превращаются в internal_error.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	render.Status(r, e.Status())
	render.JSON(w, r, Error(e.Code, e.Message))
}

// OK пишет данные со статусом 200.
func OK(w http.ResponseWriter, r *http.Request, data any) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, data)
}

// ValidationError собирает ошибку invalid_request из нарушений валидации.
func ValidationError(errs validator.ValidationErrors) *apperr.Error {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "uuid":
			msgs = append(msgs, fmt.Sprintf("field %s must be a uuid", err.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s is too long", err.Field()))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("field %s is too small", err.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return apperr.New(apperr.CodeInvalidRequest, strings.Join(msgs, ", "))
}
