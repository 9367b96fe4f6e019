package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-electrico/internal/application/dto"
	"github.com/jhoicas/erp-electrico/internal/domain/inventory"
	"github.com/jhoicas/erp-electrico/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición: productos en o bajo su stock mínimo
// con la cantidad sugerida a pedir.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo}
}

// ReorderList devuelve los productos con CurrentStock <= MinimumStock, ordenados por
// déficit relativo (los agotados primero) y con prioridad 1 = más urgente.
func (uc *ReplenishmentUseCase) ReorderList(ctx context.Context) ([]dto.ReorderSuggestionDTO, error) {
	products, err := uc.productRepo.ListBelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReorderSuggestionDTO, 0, len(products))
	for _, p := range products {
		if !p.BelowMinimum() {
			continue
		}
		qty := inventory.SuggestedReorder(p.CurrentStock, p.MinimumStock)
		out = append(out, dto.ReorderSuggestionDTO{
			ProductID:          p.ID,
			SKU:                p.SKU,
			ProductName:        p.Name,
			CurrentStock:       p.CurrentStock,
			MinimumStock:       p.MinimumStock,
			SuggestedOrderQty:  qty,
			UnitCost:           p.Cost,
			EstimatedOrderCost: p.Cost.Mul(decimal.NewFromInt(int64(qty))),
		})
	}

	// Primero el menor stock relativo al mínimo; luego mayor déficit absoluto; luego SKU.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		ra, rb := coverage(a), coverage(b)
		if !ra.Equal(rb) {
			return ra.LessThan(rb)
		}
		da, db := a.MinimumStock-a.CurrentStock, b.MinimumStock-b.CurrentStock
		if da != db {
			return da > db
		}
		return a.SKU < b.SKU
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}

// coverage fracción del mínimo cubierta por el stock actual (mínimo 0 cuenta como cubierto).
func coverage(s dto.ReorderSuggestionDTO) decimal.Decimal {
	if s.MinimumStock <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(s.CurrentStock)).Div(decimal.NewFromInt(int64(s.MinimumStock)))
}
