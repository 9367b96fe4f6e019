package sales_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-electrico/internal/application/dto"
	"github.com/jhoicas/erp-electrico/internal/domain"
	"github.com/jhoicas/erp-electrico/internal/domain/entity"
)

func TestProcessReturn_Parcial(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()
	sale := createSale(t, uc)

	res, err := uc.ProcessReturn(ctx, sale.ID, "v", dto.ReturnRequest{
		Items:  []dto.ReturnItemRequest{{SaleItemID: lineFor(sale, "prod-a"), Quantity: 2}},
		Reason: "empaque dañado",
	})
	require.NoError(t, err)
	assert.False(t, res.FullReturn)
	assert.Equal(t, "PENDING", res.Sale.Status)
	assert.Contains(t, res.Sale.Notes, "Devolución parcial: empaque dañado")
	require.Len(t, res.Movements, 1)
	assert.Equal(t, string(entity.MovementReturn), res.Movements[0].Type)
	assert.Equal(t, 2, res.Movements[0].Delta)
	assert.Equal(t, 7, store.Product("prod-a").CurrentStock)
}

func TestProcessReturn_TotalAnulaLaVenta(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()
	sale := createSale(t, uc)

	res, err := uc.ProcessReturn(ctx, sale.ID, "v", dto.ReturnRequest{
		Items: []dto.ReturnItemRequest{
			{SaleItemID: lineFor(sale, "prod-a"), Quantity: 5},
			{SaleItemID: lineFor(sale, "prod-b"), Quantity: 3},
		},
		Reason: "obra cancelada",
	})
	require.NoError(t, err)
	assert.True(t, res.FullReturn)
	assert.Equal(t, "CANCELLED", res.Sale.Status)
	assert.Contains(t, res.Sale.Notes, "Devolución total: obra cancelada")
	assert.Equal(t, 10, store.Product("prod-a").CurrentStock)
	assert.Equal(t, 5, store.Product("prod-b").CurrentStock)

	_, err = uc.ProcessReturn(ctx, sale.ID, "v", dto.ReturnRequest{
		Items:  []dto.ReturnItemRequest{{SaleItemID: lineFor(sale, "prod-a"), Quantity: 1}},
		Reason: "otra vez",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestProcessReturn_AcumulativaHastaCompletar(t *testing.T) {
	uc, _ := newUseCase(t)
	ctx := context.Background()
	sale := createSale(t, uc)
	lineA, lineB := lineFor(sale, "prod-a"), lineFor(sale, "prod-b")

	res, err := uc.ProcessReturn(ctx, sale.ID, "v", dto.ReturnRequest{
		Items:  []dto.ReturnItemRequest{{SaleItemID: lineA, Quantity: 5}},
		Reason: "primera",
	})
	require.NoError(t, err)
	assert.False(t, res.FullReturn)

	_, err = uc.ProcessReturn(ctx, sale.ID, "v", dto.ReturnRequest{
		Items:  []dto.ReturnItemRequest{{SaleItemID: lineA, Quantity: 1}},
		Reason: "de más",
	})
	assert.ErrorIs(t, err, domain.ErrQuantityViolation, "la línea A ya fue devuelta completa")

	res, err = uc.ProcessReturn(ctx, sale.ID, "v", dto.ReturnRequest{
		Items:  []dto.ReturnItemRequest{{SaleItemID: lineB, Quantity: 3}},
		Reason: "segunda",
	})
	require.NoError(t, err)
	assert.True(t, res.FullReturn)
	assert.Equal(t, "CANCELLED", res.Sale.Status)
	assert.Equal(t, "Devolución parcial: primera\nDevolución total: segunda", res.Sale.Notes)
}

func TestProcessReturn_Errores(t *testing.T) {
	uc, store := newUseCase(t)
	ctx := context.Background()
	sale := createSale(t, uc)
	before := store.MovementCount()

	_, err := uc.ProcessReturn(ctx, "no-existe", "v", dto.ReturnRequest{
		Items: []dto.ReturnItemRequest{{SaleItemID: "x", Quantity: 1}}, Reason: "r",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.ProcessReturn(ctx, sale.ID, "v", dto.ReturnRequest{
		Items: []dto.ReturnItemRequest{{SaleItemID: "ajena", Quantity: 1}}, Reason: "r",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.ProcessReturn(ctx, sale.ID, "v", dto.ReturnRequest{
		Items: []dto.ReturnItemRequest{{SaleItemID: lineFor(sale, "prod-a"), Quantity: -2}}, Reason: "r",
	})
	assert.ErrorIs(t, err, domain.ErrQuantityViolation)

	_, err = uc.ProcessReturn(ctx, sale.ID, "v", dto.ReturnRequest{
		Items: []dto.ReturnItemRequest{{SaleItemID: lineFor(sale, "prod-a"), Quantity: 6}}, Reason: "r",
	})
	assert.ErrorIs(t, err, domain.ErrQuantityViolation)

	_, err = uc.ProcessReturn(ctx, sale.ID, "v", dto.ReturnRequest{
		Items: []dto.ReturnItemRequest{{SaleItemID: lineFor(sale, "prod-a"), Quantity: 0}}, Reason: "r",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.ProcessReturn(ctx, sale.ID, "v", dto.ReturnRequest{
		Items: []dto.ReturnItemRequest{{SaleItemID: lineFor(sale, "prod-a"), Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "sin motivo")

	assert.Equal(t, before, store.MovementCount())
	got, err := uc.Get(ctx, sale.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Notes)
}
