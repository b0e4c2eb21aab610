package errors

import (
	"fmt"
	"net/http"
)

// ErrorDetail es el segundo nivel de un error: qué sub-regla falló y sobre qué.
type ErrorDetail struct {
	Code    string `json:"code"`
	Target  string `json:"target,omitempty"`
	Message string `json:"message"`
}

// AppError define la estructura estándar para errores de la aplicación.
type AppError struct {
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	Target     string        `json:"target,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Details    []ErrorDetail `json:"details,omitempty"`
	HTTPStatus int           `json:"-"`
	Err        error         `json:"-"` // causa original, solo para logs
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if len(e.Details) > 0 {
		msg += ": " + e.Details[0].Message
	} else if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is compara por código, de modo que errors.Is(err, ErrInvalidJWT) funcione
// sobre las copias devueltas por WithDetail/WithDetails.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// New crea un nuevo AppError
func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// FromError convierte un error genérico en un AppError.
// Si no es un AppError, devuelve un error interno conservando la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// Las variantes With* devuelven una COPIA para no mutar los errores base.

func (e *AppError) WithDetail(detail string) *AppError {
	n := *e
	n.Detail = detail
	return &n
}

// WithDetails reemplaza la lista de detalles.
func (e *AppError) WithDetails(details ...ErrorDetail) *AppError {
	n := *e
	n.Details = append([]ErrorDetail(nil), details...)
	return &n
}

func (e *AppError) WithCause(err error) *AppError {
	n := *e
	n.Err = err
	return &n
}

func (e *AppError) WithStatus(status int) *AppError {
	n := *e
	n.HTTPStatus = status
	return &n
}

// FirstDetail devuelve el primer detalle o uno vacío.
func (e *AppError) FirstDetail() ErrorDetail {
	if len(e.Details) == 0 {
		return ErrorDetail{}
	}
	return e.Details[0]
}

// =================================================================================
// CÓDIGOS
// =================================================================================

const (
	CodeInvalidAuthorizationHeader = "invalidAuthorizationHeader"
	CodeInvalidJWT                 = "invalidJWT"
	CodeUnableToGetPublicKey       = "unableToGetPublicKey"

	// Códigos de detalle
	CodeNullValue          = "nullValue"
	CodeInvalidValue       = "invalidValue"
	CodeUnauthorizedAccess = "unauthorizedAccess"
)

const TargetAuthorizationHeader = "Authorization header"

// =================================================================================
// LISTA DE ERRORES PREDEFINIDOS
// =================================================================================

var (
	ErrInvalidAuthorizationHeader = &AppError{
		Code:       CodeInvalidAuthorizationHeader,
		Message:    "Invalid Authorization header",
		Target:     TargetAuthorizationHeader,
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidJWT = &AppError{
		Code:       CodeInvalidJWT,
		Message:    "Invalid JWT",
		Target:     TargetAuthorizationHeader,
		HTTPStatus: http.StatusUnauthorized,
	}

	// El status real se copia del servicio de claves con WithStatus.
	ErrUnableToGetPublicKey = &AppError{
		Code:       CodeUnableToGetPublicKey,
		Message:    "Unable to get the public key",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrNotFound = &AppError{
		Code:       "notFound",
		Message:    "The requested resource was not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrInternalServerError = &AppError{
		Code:       "internalServerError",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
	}
)
