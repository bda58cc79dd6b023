// Package apperr описывает ошибки уровня API: машиночитаемый код, сообщение для клиента
// и HTTP-статус. Сервисы возвращают *Error, обработчики отдают их клиенту как есть,
// а любые другие ошибки превращают в internal_error.
package apperr

import (
	"errors"
	"net/http"
)

// Code — машиночитаемый код ошибки, который видит клиент.
type Code string

const (
	CodeInvalidRequest         Code = "invalid_request"
	CodeInvalidFormat          Code = "invalid_format"
	CodeUnauthorized           Code = "unauthorized"
	CodeForbidden              Code = "forbidden"
	CodePlanFeatureUnavailable Code = "plan_feature_unavailable"
	CodeNotFound               Code = "not_found"
	CodeFeatureNotAvailable    Code = "feature_not_available"
	CodeDBError                Code = "db_error"
	CodeAuthError              Code = "auth_error"
	CodeRateLimited            Code = "rate_limited"
	CodeInternal               Code = "internal_error"
)

// Error — структурированная ошибка API.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status возвращает HTTP-статус для кода ошибки.
func (e *Error) Status() int {
	return Status(e.Code)
}

// New создаёт ошибку без причины.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap создаёт ошибку с причиной. Причина попадает в логи, но не клиенту.
func Wrap(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// Status сопоставляет код ошибки HTTP-статусу.
func Status(code Code) int {
	switch code {
	case CodeInvalidRequest, CodeInvalidFormat, CodeFeatureNotAvailable:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodePlanFeatureUnavailable:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// From возвращает структурированную ошибку из цепочки err.
// Неструктурированные ошибки оборачиваются в internal_error.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(CodeInternal, "Unexpected error", err)
}

// Is сообщает, что в цепочке err есть ошибка с указанным кодом.
func Is(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
