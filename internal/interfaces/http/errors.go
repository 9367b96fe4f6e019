package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/erp-electrico/internal/application/dto"
	"github.com/jhoicas/erp-electrico/internal/domain"
	"github.com/jhoicas/erp-electrico/pkg/logger"
)

var statusByCode = map[string]int{
	"NOT_FOUND":          fiber.StatusNotFound,
	"INVALID_STATE":      fiber.StatusConflict,
	"DUPLICATE":          fiber.StatusConflict,
	"QUANTITY_VIOLATION": fiber.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK": fiber.StatusUnprocessableEntity,
	"VALIDATION":         fiber.StatusBadRequest,
	"UNAUTHORIZED":       fiber.StatusUnauthorized,
	"FORBIDDEN":          fiber.StatusForbidden,
}

// respondError traduce errores de dominio a HTTP. Los rechazos del llamador se
// registran en debug; los fallos de infraestructura en error y salen como 500 sin detalle.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	if !domain.IsDomainError(err) {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
	}
	code := domain.Code(err)
	log.Debug().Err(err).Str("code", code).Str("path", c.Path()).Msg("solicitud rechazada")
	return c.Status(statusByCode[code]).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

// pathID lee el parámetro :id. Un id que no es UUID no puede existir y sale como NotFound.
func pathID(c *fiber.Ctx) (string, error) {
	raw := c.Params("id")
	if _, err := uuid.Parse(raw); err != nil {
		return "", fmt.Errorf("%w: id %q", domain.ErrNotFound, raw)
	}
	return raw, nil
}

// pageParams lee limit/offset de la query y los valida (limit 1..100, offset >= 0).
func pageParams(c *fiber.Ctx) (dto.PageRequest, error) {
	p := dto.PageRequest{Limit: dto.DefaultLimit}
	if err := c.QueryParser(&p); err != nil {
		return p, fmt.Errorf("%w: paginación inválida", domain.ErrValidation)
	}
	if err := validate.Struct(p); err != nil {
		return p, fmt.Errorf("%w: %s", domain.ErrValidation, validationMessage(err))
	}
	return p, nil
}
