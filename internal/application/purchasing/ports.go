package purchasing

import (
	"context"

	"github.com/jhoicas/erp-electrico/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con repositorios atados a ella.
// Una recepción actualiza líneas, stock, costo y libro en la misma transacción.
type TxRunner interface {
	RunPurchasing(ctx context.Context, fn func(
		orderRepo repository.PurchaseOrderRepository,
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}
