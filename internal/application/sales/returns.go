package sales

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/erp-electrico/internal/application/dto"
	"github.com/jhoicas/erp-electrico/internal/application/inventory"
	"github.com/jhoicas/erp-electrico/internal/domain"
	"github.com/jhoicas/erp-electrico/internal/domain/entity"
	"github.com/jhoicas/erp-electrico/internal/domain/repository"
)

// ProcessReturn registra una devolución de cliente sobre una venta no anulada.
// Las cantidades son acumulativas por línea y nunca superan lo vendido. Cada unidad
// devuelta vuelve al stock con un movimiento RETURN. Si con esta devolución todas las
// líneas quedan devueltas por completo la venta pasa a CANCELLED.
func (uc *SaleUseCase) ProcessReturn(ctx context.Context, saleID, userID string, in dto.ReturnRequest) (*dto.ReturnResponse, error) {
	reason := strings.TrimSpace(in.Reason)
	if len(in.Items) == 0 || reason == "" {
		return nil, fmt.Errorf("%w: la devolución requiere líneas y motivo", domain.ErrValidation)
	}

	var (
		sale       *entity.Sale
		movements  []*entity.StockMovement
		fullReturn bool
	)
	err := uc.txRunner.RunSales(ctx, func(saleRepo repository.SaleRepository, productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) error {
		var err error
		sale, err = lockSale(ctx, saleRepo, saleID)
		if err != nil {
			return err
		}
		if sale.Status == entity.SaleCancelled {
			return fmt.Errorf("%w: la venta está anulada", domain.ErrInvalidState)
		}

		quantities, err := aggregateReturn(sale, in.Items)
		if err != nil {
			return err
		}

		now := uc.now()
		inputs := make([]inventory.MovementInput, 0, len(quantities))
		for i := range sale.Items {
			item := &sale.Items[i]
			qty := quantities[item.ID]
			if qty == 0 {
				continue
			}
			item.ReturnedQuantity += qty
			if err := saleRepo.UpdateItemReturned(ctx, item.ID, item.ReturnedQuantity); err != nil {
				return err
			}
			inputs = append(inputs, inventory.MovementInput{
				ProductID: item.ProductID,
				Type:      entity.MovementReturn,
				Quantity:  qty,
				Reference: sale.ID,
				UserID:    userID,
				Notes:     reason,
			})
		}
		movements, err = inventory.ApplyAllInTx(ctx, productRepo, movRepo, inputs, now)
		if err != nil {
			return err
		}

		fullReturn = sale.FullyReturned()
		if fullReturn {
			sale.Status = entity.SaleCancelled
			sale.AppendNote("Devolución total: " + reason)
		} else {
			sale.AppendNote("Devolución parcial: " + reason)
		}
		sale.UpdatedAt = now
		return saleRepo.UpdateStatus(ctx, sale.ID, sale.Status, sale.Notes)
	})
	if err != nil {
		uc.metrics.Rejected("sale_return", domain.Code(err))
		uc.log.Warn().Err(err).Str("sale_id", saleID).Msg("devolución rechazada")
		return nil, err
	}

	uc.recordMovements(movements)
	if fullReturn {
		uc.metrics.OrderTransition(metricKind, string(sale.Status))
	}
	uc.log.Info().
		Str("sale_id", sale.ID).
		Bool("full_return", fullReturn).
		Int("lines", len(movements)).
		Msg("devolución registrada")

	res := &dto.ReturnResponse{
		Sale:       *toSaleResponse(sale),
		FullReturn: fullReturn,
		Movements:  make([]dto.StockMovementResponse, 0, len(movements)),
	}
	for _, m := range movements {
		res.Movements = append(res.Movements, inventory.ToMovementResponse(m))
	}
	return res, nil
}

// aggregateReturn suma líneas repetidas y valida que lo devuelto no supere lo vendido.
func aggregateReturn(sale *entity.Sale, lines []dto.ReturnItemRequest) (map[string]int, error) {
	quantities := make(map[string]int, len(lines))
	total := 0
	for _, line := range lines {
		item := sale.Item(line.SaleItemID)
		if item == nil {
			return nil, fmt.Errorf("%w: la línea %s no pertenece a la venta", domain.ErrNotFound, line.SaleItemID)
		}
		if line.Quantity < 0 {
			return nil, fmt.Errorf("%w: cantidad devuelta negativa en la línea %s", domain.ErrQuantityViolation, line.SaleItemID)
		}
		quantities[item.ID] += line.Quantity
		total += line.Quantity
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: la devolución no tiene unidades", domain.ErrValidation)
	}
	for id, qty := range quantities {
		item := sale.Item(id)
		if item.ReturnedQuantity+qty > item.Quantity {
			return nil, fmt.Errorf("%w: la línea %s admite %d unidades más y se intentan devolver %d",
				domain.ErrQuantityViolation, id, item.Returnable(), qty)
		}
	}
	return quantities, nil
}
