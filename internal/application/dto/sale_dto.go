package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de una venta nueva. UnitPrice cero = precio de lista del producto.
type SaleItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity" validate:"max=1000000"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	CustomerID    *string           `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	PaymentMethod string            `json:"payment_method" validate:"required"`
	Notes         string            `json:"notes" validate:"max=2000"`
	Items         []SaleItemRequest `json:"items" validate:"dive"`
}

// ReturnItemRequest cantidad a devolver de una línea de la venta.
type ReturnItemRequest struct {
	SaleItemID string `json:"sale_item_id" validate:"required,uuid"`
	Quantity   int    `json:"quantity" validate:"max=1000000"`
}

// ReturnRequest body para POST /api/sales/:id/returns.
type ReturnRequest struct {
	Items  []ReturnItemRequest `json:"items" validate:"dive"`
	Reason string              `json:"reason" validate:"required,max=500"`
}

// SaleItemResponse salida de una línea de venta.
type SaleItemResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	Quantity         int             `json:"quantity"`
	ReturnedQuantity int             `json:"returned_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Total            decimal.Decimal `json:"total"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID            string             `json:"id"`
	CustomerID    *string            `json:"customer_id,omitempty"`
	UserID        string             `json:"user_id"`
	PaymentMethod string             `json:"payment_method"`
	Status        string             `json:"status"`
	StatusLabel   string             `json:"status_label"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Notes         string             `json:"notes"`
	Items         []SaleItemResponse `json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ReturnResponse resultado de una devolución.
type ReturnResponse struct {
	Sale       SaleResponse            `json:"sale"`
	FullReturn bool                    `json:"full_return"`
	Movements  []StockMovementResponse `json:"movements"`
}
