package sales_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-electrico/internal/application/dto"
	"github.com/jhoicas/erp-electrico/internal/application/ports"
	"github.com/jhoicas/erp-electrico/internal/application/sales"
	"github.com/jhoicas/erp-electrico/internal/domain"
	"github.com/jhoicas/erp-electrico/internal/domain/entity"
	"github.com/jhoicas/erp-electrico/internal/testutil/memstore"
	"github.com/jhoicas/erp-electrico/pkg/logger"
)

func newUseCase(t *testing.T) (*sales.SaleUseCase, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	store.SeedCustomer("cli-1", "Constructora El Roble")
	store.SeedProduct("prod-a", "CAB-THHN-12", 10, 2, decimal.NewFromInt(3500), decimal.NewFromInt(2500))
	store.SeedProduct("prod-b", "BRK-20A", 5, 1, decimal.NewFromInt(18000), decimal.NewFromInt(12000))
	uc := sales.NewSaleUseCase(store, store.Customers(), store.Products(), store.Sales(), ports.NopMetrics{}, logger.Nop())
	return uc, store
}

func createSale(t *testing.T, uc *sales.SaleUseCase) *dto.SaleResponse {
	t.Helper()
	customer := "cli-1"
	sale, err := uc.Create(context.Background(), "vendedor-1", dto.CreateSaleRequest{
		CustomerID:    &customer,
		PaymentMethod: "cash",
		Items: []dto.SaleItemRequest{
			{ProductID: "prod-a", Quantity: 5},
			{ProductID: "prod-b", Quantity: 3, UnitPrice: decimal.NewFromInt(17500)},
		},
	})
	require.NoError(t, err)
	return sale
}

func lineFor(s *dto.SaleResponse, productID string) string {
	for _, it := range s.Items {
		if it.ProductID == productID {
			return it.ID
		}
	}
	return ""
}

func TestCreate_DescuentaStockYUsaPrecioDeLista(t *testing.T) {
	uc, store := newUseCase(t)
	sale := createSale(t, uc)

	assert.Equal(t, "PENDING", sale.Status)
	assert.Equal(t, entity.PaymentCash, sale.PaymentMethod)
	// 5 * 3500 + 3 * 17500
	assert.True(t, decimal.NewFromInt(70000).Equal(sale.TotalAmount), sale.TotalAmount.String())
	assert.Equal(t, 5, store.Product("prod-a").CurrentStock)
	assert.Equal(t, 2, store.Product("prod-b").CurrentStock)
	assert.Equal(t, store.Product("prod-a").CurrentStock, store.LedgerSum("prod-a"))

	movs := store.MovementsOf("prod-a")
	last := movs[len(movs)-1]
	assert.Equal(t, entity.MovementSale, last.Type)
	assert.Equal(t, sale.ID, last.Reference)
	assert.Equal(t, -5, last.Delta())
}

func TestCreate_StockInsuficienteNoDejaRastro(t *testing.T) {
	uc, store := newUseCase(t)
	before := store.MovementCount()

	_, err := uc.Create(context.Background(), "v", dto.CreateSaleRequest{
		PaymentMethod: "CARD",
		Items: []dto.SaleItemRequest{
			{ProductID: "prod-a", Quantity: 2},
			{ProductID: "prod-b", Quantity: 6},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.ErrorIs(t, err, domain.ErrQuantityViolation)

	assert.Equal(t, 10, store.Product("prod-a").CurrentStock)
	assert.Equal(t, 5, store.Product("prod-b").CurrentStock)
	assert.Equal(t, before, store.MovementCount())
	list, err := uc.List(context.Background(), "", "", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestCreate_Validaciones(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, "v", dto.CreateSaleRequest{PaymentMethod: "CASH"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Create(ctx, "v", dto.CreateSaleRequest{PaymentMethod: "BITCOIN", Items: []dto.SaleItemRequest{{ProductID: "prod-a", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Create(ctx, "v", dto.CreateSaleRequest{PaymentMethod: "CASH", Items: []dto.SaleItemRequest{{ProductID: "prod-a", Quantity: -1}}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	ghost := "cli-x"
	_, err = uc.Create(ctx, "v", dto.CreateSaleRequest{CustomerID: &ghost, PaymentMethod: "CASH", Items: []dto.SaleItemRequest{{ProductID: "prod-a", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdvanceStatus_SoloHaciaAdelante(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	sale := createSale(t, uc)

	for _, st := range []string{"PROCESSING", "SHIPPED", "DELIVERED"} {
		got, err := uc.AdvanceStatus(ctx, sale.ID, "v", st)
		require.NoError(t, err)
		assert.Equal(t, st, got.Status)
	}
	_, err := uc.AdvanceStatus(ctx, sale.ID, "v", "PROCESSING")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = uc.AdvanceStatus(ctx, sale.ID, "v", "CANCELLED")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "una venta entregada no se anula")

	got, err := uc.AdvanceStatus(ctx, sale.ID, "v", "COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", got.Status)
}

func TestCancel_DevuelveStockPendiente(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()
	sale := createSale(t, uc)

	_, err := uc.ProcessReturn(ctx, sale.ID, "v", dto.ReturnRequest{
		Items:  []dto.ReturnItemRequest{{SaleItemID: lineFor(sale, "prod-a"), Quantity: 2}},
		Reason: "cable cortado",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, store.Product("prod-a").CurrentStock)

	got, err := uc.AdvanceStatus(ctx, sale.ID, "v", "CANCELLED")
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", got.Status)
	assert.Equal(t, 10, store.Product("prod-a").CurrentStock, "solo vuelven las 3 no devueltas")
	assert.Equal(t, 5, store.Product("prod-b").CurrentStock)
	assert.Equal(t, store.Product("prod-a").CurrentStock, store.LedgerSum("prod-a"))

	movs := store.MovementsOf("prod-b")
	assert.Equal(t, entity.MovementSaleCancellation, movs[len(movs)-1].Type)

	_, err = uc.Cancel(ctx, sale.ID, "v")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestGet_NoExiste(t *testing.T) {
	uc, _ := newUseCase(t)
	_, err := uc.Get(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_FiltraPorCliente(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	createSale(t, uc)
	_, err := uc.Create(ctx, "v", dto.CreateSaleRequest{PaymentMethod: "TRANSFER", Items: []dto.SaleItemRequest{{ProductID: "prod-a", Quantity: 1}}})
	require.NoError(t, err)

	res, err := uc.List(ctx, "", "cli-1", 20, 0)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "cli-1", *res.Items[0].CustomerID)
}
