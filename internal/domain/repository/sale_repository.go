package repository

import (
	"context"

	"github.com/jhoicas/erp-electrico/internal/domain/entity"
)

// SaleFilter filtros opcionales para listar ventas.
type SaleFilter struct {
	Status     entity.SaleStatus
	CustomerID string
}

// SaleRepository puerto de persistencia de ventas con sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	UpdateStatus(ctx context.Context, id string, status entity.SaleStatus, notes string) error
	UpdateItemReturned(ctx context.Context, itemID string, returnedQuantity int) error
	List(ctx context.Context, filter SaleFilter, limit, offset int) ([]*entity.Sale, error)
}
