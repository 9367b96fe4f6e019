package sales

import (
	"context"

	"github.com/jhoicas/erp-electrico/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con repositorios atados a ella.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}
