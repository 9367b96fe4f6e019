package purchasing_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-electrico/internal/application/dto"
	"github.com/jhoicas/erp-electrico/internal/application/ports"
	"github.com/jhoicas/erp-electrico/internal/application/purchasing"
	"github.com/jhoicas/erp-electrico/internal/domain"
	"github.com/jhoicas/erp-electrico/internal/domain/entity"
	"github.com/jhoicas/erp-electrico/internal/testutil/memstore"
	"github.com/jhoicas/erp-electrico/pkg/logger"
)

func newUseCase(t *testing.T) (*purchasing.PurchaseOrderUseCase, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	store.SeedSupplier("sup-1", "Distribuidora Andina")
	store.SeedProduct("prod-a", "CAB-THHN-12", 0, 10, decimal.NewFromInt(3500), decimal.Zero)
	store.SeedProduct("prod-b", "BRK-20A", 4, 2, decimal.NewFromInt(18000), decimal.NewFromInt(10000))
	uc := purchasing.NewPurchaseOrderUseCase(store, store.Suppliers(), store.Products(), store.Orders(), ports.NopMetrics{}, logger.Nop())
	return uc, store
}

func createOrder(t *testing.T, uc *purchasing.PurchaseOrderUseCase) *dto.PurchaseOrderResponse {
	t.Helper()
	po, err := uc.Create(context.Background(), "user-1", dto.CreatePurchaseOrderRequest{
		SupplierID: "sup-1",
		Items: []dto.PurchaseItemRequest{
			{ProductID: "prod-a", Quantity: 10, UnitPrice: decimal.RequireFromString("2500.50")},
			{ProductID: "prod-b", Quantity: 4, UnitPrice: decimal.NewFromInt(12000)},
		},
	})
	require.NoError(t, err)
	return po
}

func itemFor(po *dto.PurchaseOrderResponse, productID string) string {
	for _, it := range po.Items {
		if it.ProductID == productID {
			return it.ID
		}
	}
	return ""
}

func TestCreate_CalculaTotalDecimal(t *testing.T) {
	uc, _ := newUseCase(t)
	po := createOrder(t, uc)

	assert.Equal(t, string(entity.PurchaseOrderPending), po.Status)
	// 10 * 2500.50 + 4 * 12000
	assert.True(t, decimal.RequireFromString("73005").Equal(po.TotalAmount), po.TotalAmount.String())
	require.Len(t, po.Items, 2)
}

func TestCreate_Validaciones(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, "u", dto.CreatePurchaseOrderRequest{SupplierID: "sup-1"})
	assert.ErrorIs(t, err, domain.ErrValidation, "sin líneas")

	_, err = uc.Create(ctx, "u", dto.CreatePurchaseOrderRequest{SupplierID: "sup-1", Items: []dto.PurchaseItemRequest{
		{ProductID: "prod-a", Quantity: 0, UnitPrice: decimal.NewFromInt(1)},
	}})
	assert.ErrorIs(t, err, domain.ErrValidation, "cantidad cero")

	_, err = uc.Create(ctx, "u", dto.CreatePurchaseOrderRequest{SupplierID: "sup-1", Items: []dto.PurchaseItemRequest{
		{ProductID: "prod-a", Quantity: 1, UnitPrice: decimal.Zero},
	}})
	assert.ErrorIs(t, err, domain.ErrValidation, "precio cero")

	_, err = uc.Create(ctx, "u", dto.CreatePurchaseOrderRequest{SupplierID: "no-existe", Items: []dto.PurchaseItemRequest{
		{ProductID: "prod-a", Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
	}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Create(ctx, "u", dto.CreatePurchaseOrderRequest{SupplierID: "sup-1", Items: []dto.PurchaseItemRequest{
		{ProductID: "fantasma", Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
	}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceive_ParcialYLuegoCompleto(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()
	po := createOrder(t, uc)
	itemA := itemFor(po, "prod-a")

	got, err := uc.Receive(ctx, po.ID, "bodega-1", dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceiveItemRequest{{ItemID: itemA, Quantity: 6}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PurchaseOrderPartiallyReceived), got.Status)
	assert.NotNil(t, got.ActualDelivery)
	assert.Equal(t, 6, store.Product("prod-a").CurrentStock)

	got, err = uc.Receive(ctx, po.ID, "bodega-1", dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceiveItemRequest{
			{ItemID: itemA, Quantity: 4},
			{ItemID: itemFor(po, "prod-b"), Quantity: 4},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.PurchaseOrderReceived), got.Status)
	assert.Equal(t, 10, store.Product("prod-a").CurrentStock)
	assert.Equal(t, 8, store.Product("prod-b").CurrentStock)

	movs := store.MovementsOf("prod-a")
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, entity.MovementPurchase, m.Type)
		assert.Equal(t, po.ID, m.Reference)
		assert.Equal(t, "bodega-1", m.UserID)
	}
	assert.Equal(t, store.Product("prod-a").CurrentStock, store.LedgerSum("prod-a"))
	assert.Equal(t, store.Product("prod-b").CurrentStock, store.LedgerSum("prod-b"))
}

func TestReceive_ActualizaCostoPromedio(t *testing.T) {
	uc, store := newUseCase(t)
	po := createOrder(t, uc)

	_, err := uc.Receive(context.Background(), po.ID, "u", dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceiveItemRequest{{ItemID: itemFor(po, "prod-b"), Quantity: 4}},
	})
	require.NoError(t, err)
	// (4 * 10000 + 4 * 12000) / 8
	assert.True(t, decimal.NewFromInt(11000).Equal(store.Product("prod-b").Cost))
}

func TestReceive_ExcesoNoCambiaNada(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()
	po := createOrder(t, uc)
	before := store.MovementCount()

	_, err := uc.Receive(ctx, po.ID, "u", dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceiveItemRequest{
			{ItemID: itemFor(po, "prod-b"), Quantity: 2},
			{ItemID: itemFor(po, "prod-a"), Quantity: 11},
		},
	})
	require.ErrorIs(t, err, domain.ErrQuantityViolation)

	assert.Equal(t, 0, store.Product("prod-a").CurrentStock)
	assert.Equal(t, 4, store.Product("prod-b").CurrentStock)
	assert.Equal(t, before, store.MovementCount())
	got, err := uc.Get(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.PurchaseOrderPending), got.Status)
	for _, it := range got.Items {
		assert.Zero(t, it.ReceivedQuantity)
	}
}

func TestReceive_LineasRepetidasSeSuman(t *testing.T) {
	uc, _ := newUseCase(t)
	po := createOrder(t, uc)
	itemA := itemFor(po, "prod-a")

	_, err := uc.Receive(context.Background(), po.ID, "u", dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceiveItemRequest{{ItemID: itemA, Quantity: 6}, {ItemID: itemA, Quantity: 5}},
	})
	assert.ErrorIs(t, err, domain.ErrQuantityViolation, "6+5 supera las 10 pedidas")
}

func TestReceive_Errores(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	po := createOrder(t, uc)

	_, err := uc.Receive(ctx, "no-existe", "u", dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceiveItemRequest{{ItemID: "x", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Receive(ctx, po.ID, "u", dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceiveItemRequest{{ItemID: "linea-ajena", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Receive(ctx, po.ID, "u", dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceiveItemRequest{{ItemID: itemFor(po, "prod-a"), Quantity: -1}},
	})
	assert.ErrorIs(t, err, domain.ErrQuantityViolation)

	_, err = uc.Receive(ctx, po.ID, "u", dto.ReceivePurchaseOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Cancel(ctx, po.ID)
	require.NoError(t, err)
	_, err = uc.Receive(ctx, po.ID, "u", dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceiveItemRequest{{ItemID: itemFor(po, "prod-a"), Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestReceive_FalloAMitadHaceRollback(t *testing.T) {
	uc, store := newUseCase(t)
	po := createOrder(t, uc)
	store.FailMovementAfter = 1

	_, err := uc.Receive(context.Background(), po.ID, "u", dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceiveItemRequest{
			{ItemID: itemFor(po, "prod-a"), Quantity: 1},
			{ItemID: itemFor(po, "prod-b"), Quantity: 1},
		},
	})
	require.ErrorIs(t, err, memstore.ErrInjected)
	store.FailMovementAfter = 0

	assert.Equal(t, 0, store.Product("prod-a").CurrentStock)
	assert.Equal(t, 4, store.Product("prod-b").CurrentStock)
	got, err := uc.Get(context.Background(), po.ID)
	require.NoError(t, err)
	for _, it := range got.Items {
		assert.Zero(t, it.ReceivedQuantity)
	}
}

func TestReceive_BloqueaProductosEnOrden(t *testing.T) {
	uc, store := newUseCase(t)
	po := createOrder(t, uc)
	store.ProductLocks = nil

	_, err := uc.Receive(context.Background(), po.ID, "u", dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceiveItemRequest{
			{ItemID: itemFor(po, "prod-b"), Quantity: 1},
			{ItemID: itemFor(po, "prod-a"), Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"prod-a", "prod-b"}, store.ProductLocks)
}

func TestAdvanceStatus_TablaDeTransiciones(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	po := createOrder(t, uc)

	_, err := uc.AdvanceStatus(ctx, po.ID, "ORDERED")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "no se puede saltar APPROVED")

	got, err := uc.AdvanceStatus(ctx, po.ID, "approved")
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", got.Status)

	got, err = uc.AdvanceStatus(ctx, po.ID, "ORDERED")
	require.NoError(t, err)
	assert.Equal(t, "ORDERED", got.Status)

	_, err = uc.AdvanceStatus(ctx, po.ID, "RECEIVED")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "RECEIVED solo se alcanza recibiendo")

	_, err = uc.AdvanceStatus(ctx, po.ID, "INVENTADO")
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err = uc.AdvanceStatus(ctx, po.ID, "CANCELLED")
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", got.Status)

	_, err = uc.AdvanceStatus(ctx, po.ID, "APPROVED")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "CANCELLED es terminal")
	assert.Contains(t, err.Error(), "cerrada")
}

func TestCancel_ConMercanciaRecibidaSeRechaza(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()
	po := createOrder(t, uc)

	_, err := uc.Receive(ctx, po.ID, "u", dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceiveItemRequest{{ItemID: itemFor(po, "prod-a"), Quantity: 3}},
	})
	require.NoError(t, err)

	_, err = uc.Cancel(ctx, po.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, 3, store.Product("prod-a").CurrentStock, "el stock recibido permanece")
}

func TestList_FiltraPorEstado(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	first := createOrder(t, uc)
	createOrder(t, uc)
	_, err := uc.Cancel(ctx, first.ID)
	require.NoError(t, err)

	res, err := uc.List(ctx, "CANCELLED", "", 20, 0)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, first.ID, res.Items[0].ID)

	res, err = uc.List(ctx, "", "sup-1", 20, 0)
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
}
