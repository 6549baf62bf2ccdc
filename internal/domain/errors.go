package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas). Cada uno corresponde a una clase de respuesta HTTP.
var (
	ErrValidation         = errors.New("entrada inválida")
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrUpstream           = errors.New("fallo en servicio dependiente")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
)

// Error lleva un mensaje apto para el cliente y la clase (sentinel) a la que pertenece.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return newError(ErrValidation, "VALIDATION", format, args...)
}

func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, "NOT_FOUND", format, args...)
}

// Unauthorized usa un código propio por motivo (MISSING_TOKEN, INVALID_TOKEN, UNKNOWN_SUBJECT...).
func Unauthorized(code, format string, args ...any) error {
	return newError(ErrUnauthorized, code, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newError(ErrForbidden, "FORBIDDEN", format, args...)
}

func Conflict(format string, args ...any) error {
	return newError(ErrConflict, "CONFLICT", format, args...)
}

func InsufficientStock(format string, args ...any) error {
	return newError(ErrInsufficientStock, "INSUFFICIENT_STOCK", format, args...)
}

// UpstreamError fallo al llamar a otro servicio. Status es 0 si no hubo respuesta (red, timeout).
type UpstreamError struct {
	Service string
	Status  int
	Body    []byte
	Timeout bool
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: sin respuesta: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s: respondió %d", e.Service, e.Status)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}
