package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un material eléctrico del catálogo.
// CurrentStock solo cambia mediante operaciones que registran un StockMovement.
type Product struct {
	ID           string
	SKU          string // único
	Name         string
	Description  string
	Unit         string          // und, m, rollo, caja...
	Price        decimal.Decimal // precio de venta
	Cost         decimal.Decimal // costo promedio ponderado (inicia en 0)
	CurrentStock int
	MinimumStock int // punto de reorden
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BelowMinimum indica si el producto está en o por debajo del punto de reorden.
func (p *Product) BelowMinimum() bool {
	return p.CurrentStock <= p.MinimumStock
}
