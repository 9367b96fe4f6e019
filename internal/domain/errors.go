package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Los casos de uso los envuelven con fmt.Errorf("%w: detalle", ...) y los
// handlers los distinguen con errors.Is.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidState      = errors.New("estado inválido para la operación")
	ErrQuantityViolation = errors.New("cantidad fuera de rango")
	ErrValidation        = errors.New("entrada inválida")
	ErrInsufficientStock = fmt.Errorf("%w: stock insuficiente", ErrQuantityViolation)
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
)

// IsDomainError informa si err pertenece a la taxonomía de dominio (errores de
// entrada o de estado del llamador), a diferencia de fallos de infraestructura.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidState, ErrQuantityViolation, ErrValidation,
		ErrDuplicate, ErrUnauthorized, ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Code devuelve el código estable del error de dominio (usado en respuestas HTTP y métricas).
// Errores fuera de la taxonomía devuelven "INTERNAL".
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, ErrQuantityViolation):
		return "QUANTITY_VIOLATION"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidState):
		return "INVALID_STATE"
	case errors.Is(err, ErrValidation):
		return "VALIDATION"
	case errors.Is(err, ErrDuplicate):
		return "DUPLICATE"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	default:
		return "INTERNAL"
	}
}
