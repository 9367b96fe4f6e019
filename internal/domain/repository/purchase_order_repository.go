package repository

import (
	"context"
	"time"

	"github.com/jhoicas/erp-electrico/internal/domain/entity"
)

// PurchaseOrderFilter filtros opcionales para listar órdenes de compra.
type PurchaseOrderFilter struct {
	Status     entity.PurchaseOrderStatus
	SupplierID string
}

// PurchaseOrderRepository puerto de persistencia de órdenes de compra con sus líneas.
type PurchaseOrderRepository interface {
	// Create persiste cabecera y líneas.
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// GetByIDForUpdate bloquea la cabecera (y así serializa recepciones concurrentes) y carga las líneas.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, id string, status entity.PurchaseOrderStatus, actualDelivery *time.Time) error
	UpdateItemReceived(ctx context.Context, itemID string, receivedQuantity int) error
	List(ctx context.Context, filter PurchaseOrderFilter, limit, offset int) ([]*entity.PurchaseOrder, error)
}
