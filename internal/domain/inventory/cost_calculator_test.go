package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/erp-electrico/internal/domain/inventory"
)

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	// 10 und a 1000 + 30 und a 2000 = 70000 / 40 = 1750
	got := inventory.CostCalculator(10, decimal.NewFromInt(1000), 30, decimal.NewFromInt(2000))
	assert.True(t, got.Equal(decimal.NewFromInt(1750)), "got %s", got)
}

func TestCostCalculator_SinStockPrevio(t *testing.T) {
	got := inventory.CostCalculator(0, decimal.Zero, 6, decimal.RequireFromString("12500.50"))
	assert.True(t, got.Equal(decimal.RequireFromString("12500.50")), "got %s", got)
}

func TestCostCalculator_SumaCero(t *testing.T) {
	assert.True(t, inventory.CostCalculator(0, decimal.NewFromInt(5), 0, decimal.NewFromInt(5)).IsZero())
}

func TestSuggestedReorder(t *testing.T) {
	assert.Equal(t, 13, inventory.SuggestedReorder(2, 10)) // ideal 15
	assert.Equal(t, 8, inventory.SuggestedReorder(0, 5))   // ideal ceil(7.5)=8
	assert.Equal(t, 0, inventory.SuggestedReorder(20, 10))
}
