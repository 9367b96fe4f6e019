package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-electrico/internal/domain/entity"
)

// StockMovementRepository puerto del libro de stock. Solo se agregan filas:
// no existen operaciones de actualización ni borrado.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, reference string) ([]*entity.StockMovement, error)
	// SumByProduct suma los deltas con signo de todos los movimientos del producto.
	SumByProduct(ctx context.Context, productID string) (int, error)
}
