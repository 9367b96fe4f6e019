package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-electrico/internal/application/dto"
	"github.com/jhoicas/erp-electrico/internal/application/inventory"
	"github.com/jhoicas/erp-electrico/pkg/logger"
)

// InventoryHandler maneja ajustes manuales y la lista de reposición.
type InventoryHandler struct {
	ledger        *inventory.StockLedgerUseCase
	replenishment *inventory.ReplenishmentUseCase
	log           *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.StockLedgerUseCase, replenishment *inventory.ReplenishmentUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, replenishment: replenishment, log: log}
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Description  quantity positiva registra ADJUSTMENT_IN, negativa ADJUSTMENT_OUT. Nunca deja stock negativo.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, quantity con signo, notes"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.ledger.Adjust(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ReorderList godoc
// @Summary      Lista de reposición
// @Description  Productos con stock en o bajo el mínimo y la cantidad sugerida a pedir.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReorderSuggestionDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/reorder-list [get]
func (h *InventoryHandler) ReorderList(c *fiber.Ctx) error {
	list, err := h.replenishment.ReorderList(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total":    len(list),
		"products": list,
	})
}
