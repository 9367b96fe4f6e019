package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/erp-electrico/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isCheckViolation verifica si un error es una violación de CHECK (23514).
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// validID indica si id tiene formato UUID. Las columnas id son UUID y un valor
// mal formado nunca corresponde a una fila.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// wrapWriteErr traduce violaciones de constraints a errores de dominio.
// 22P02 (texto inválido para el tipo) sale como NotFound y 22003 (valor fuera
// de rango para INTEGER/NUMERIC) como QuantityViolation.
func wrapWriteErr(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, op)
	case isCheckViolation(err), pgCode(err) == "22003":
		return fmt.Errorf("%w: %s", domain.ErrQuantityViolation, op)
	case pgCode(err) == "22P02":
		return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func emptyIfNull(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
