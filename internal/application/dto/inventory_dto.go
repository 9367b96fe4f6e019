package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/inventory/adjustments.
// Quantity con signo: positivo entra, negativo sale.
type AdjustStockRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"min=-1000000,max=1000000"`
	Notes     string `json:"notes" validate:"required,max=500"`
}

// StockMovementResponse salida de un movimiento del libro de stock.
type StockMovementResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	Delta     int       `json:"delta"`
	Reference string    `json:"reference"`
	UserID    string    `json:"user_id"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// StockMovementListResponse lista paginada de movimientos.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// LedgerCheckResponse compara el stock del producto con la suma del libro.
type LedgerCheckResponse struct {
	ProductID    string `json:"product_id"`
	CurrentStock int    `json:"current_stock"`
	LedgerSum    int    `json:"ledger_sum"`
	Consistent   bool   `json:"consistent"`
}

// ReorderSuggestionDTO sugerencia de compra para un producto en o bajo su mínimo.
type ReorderSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	CurrentStock       int             `json:"current_stock"`
	MinimumStock       int             `json:"minimum_stock"`
	SuggestedOrderQty  int             `json:"suggested_order_qty"`  // ceil(MinimumStock * 1.5) - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`             // 1 = más urgente
}
