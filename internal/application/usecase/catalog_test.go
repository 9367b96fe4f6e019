package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-electrico/internal/application/dto"
	"github.com/jhoicas/erp-electrico/internal/application/usecase"
	"github.com/jhoicas/erp-electrico/internal/domain"
	"github.com/jhoicas/erp-electrico/internal/domain/entity"
	"github.com/jhoicas/erp-electrico/internal/testutil/memstore"
)

func TestProductCreate_StockInicialEntraPorElLibro(t *testing.T) {
	store := memstore.New()
	uc := usecase.NewProductUseCase(store, store.Products())

	p, err := uc.Create(context.Background(), "admin-1", dto.CreateProductRequest{
		SKU: " cab thhn 12 ", Name: "Cable THHN 12 AWG", Price: decimal.NewFromInt(3500),
		MinimumStock: 50, InitialStock: 200,
	})
	require.NoError(t, err)
	assert.Equal(t, "CAB-THHN-12", p.SKU)
	assert.Equal(t, "und", p.Unit)
	assert.Equal(t, 200, p.CurrentStock)
	assert.True(t, p.Cost.IsZero())

	movs := store.MovementsOf(p.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementAdjustmentIn, movs[0].Type)
	assert.Equal(t, 200, store.LedgerSum(p.ID))

	_, err = uc.Create(context.Background(), "admin-1", dto.CreateProductRequest{SKU: "CAB-THHN-12", Name: "otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductUpdate_NoTocaStockNiCosto(t *testing.T) {
	store := memstore.New()
	store.SeedProduct("p1", "BRK-20A", 7, 2, decimal.NewFromInt(18000), decimal.NewFromInt(12000))
	uc := usecase.NewProductUseCase(store, store.Products())

	price := decimal.NewFromInt(19000)
	minStock := 4
	got, err := uc.Update(context.Background(), "p1", dto.UpdateProductRequest{Price: &price, MinimumStock: &minStock})
	require.NoError(t, err)
	assert.True(t, price.Equal(got.Price))
	assert.Equal(t, 7, store.Product("p1").CurrentStock)
	assert.True(t, decimal.NewFromInt(12000).Equal(store.Product("p1").Cost))
	assert.Equal(t, 4, store.Product("p1").MinimumStock)

	_, err = uc.Update(context.Background(), "nada", dto.UpdateProductRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSupplierCreate_NormalizaYValidaNIT(t *testing.T) {
	store := memstore.New()
	uc := usecase.NewSupplierUseCase(store.Suppliers())
	ctx := context.Background()

	s, err := uc.Create(ctx, dto.CreateSupplierRequest{Name: "Distribuidora Andina", TaxID: "900.123.456-8"})
	require.NoError(t, err)
	assert.Equal(t, "9001234568", s.TaxID)

	_, err = uc.Create(ctx, dto.CreateSupplierRequest{Name: "Copia", TaxID: "9001234568"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.CreateSupplierRequest{Name: "Mal DV", TaxID: "900123456-1"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	list, err := uc.List(ctx, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCustomerCreate_DocumentoOpcional(t *testing.T) {
	store := memstore.New()
	uc := usecase.NewCustomerUseCase(store.Customers())
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateCustomerRequest{Name: "Mostrador"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateCustomerRequest{Name: "Mostrador 2"})
	require.NoError(t, err, "varios clientes sin documento")

	c, err := uc.Create(ctx, dto.CreateCustomerRequest{Name: "Juan", TaxID: "1.020.304"})
	require.NoError(t, err)
	assert.Equal(t, "1020304", c.TaxID)
	_, err = uc.Create(ctx, dto.CreateCustomerRequest{Name: "Juan bis", TaxID: "1020304"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.GetByID(ctx, "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
