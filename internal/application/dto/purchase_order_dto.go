package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseItemRequest línea de una orden de compra nueva.
type PurchaseItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity" validate:"max=1000000"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID       string                `json:"supplier_id" validate:"required,uuid"`
	ExpectedDelivery *time.Time            `json:"expected_delivery,omitempty"`
	Notes            string                `json:"notes" validate:"max=2000"`
	Items            []PurchaseItemRequest `json:"items" validate:"dive"`
}

// UpdateStatusRequest body para PATCH .../status (órdenes de compra y ventas).
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ReceiveItemRequest cantidad recibida ahora (delta) para una línea.
type ReceiveItemRequest struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"max=1000000"`
}

// ReceivePurchaseOrderRequest body para POST /api/purchase-orders/:id/receive.
type ReceivePurchaseOrderRequest struct {
	Items []ReceiveItemRequest `json:"items" validate:"dive"`
	Notes string               `json:"notes" validate:"max=2000"`
}

// PurchaseItemResponse salida de una línea.
type PurchaseItemResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	Quantity         int             `json:"quantity"`
	ReceivedQuantity int             `json:"received_quantity"`
	PendingQuantity  int             `json:"pending_quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Total            decimal.Decimal `json:"total"`
}

// PurchaseOrderResponse salida de una orden de compra.
type PurchaseOrderResponse struct {
	ID               string                 `json:"id"`
	SupplierID       string                 `json:"supplier_id"`
	UserID           string                 `json:"user_id"`
	OrderDate        time.Time              `json:"order_date"`
	ExpectedDelivery *time.Time             `json:"expected_delivery,omitempty"`
	ActualDelivery   *time.Time             `json:"actual_delivery,omitempty"`
	Status           string                 `json:"status"`
	StatusLabel      string                 `json:"status_label"`
	TotalAmount      decimal.Decimal        `json:"total_amount"`
	Notes            string                 `json:"notes"`
	Items            []PurchaseItemResponse `json:"items"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

// PurchaseOrderListResponse lista paginada de órdenes de compra.
type PurchaseOrderListResponse struct {
	Items []PurchaseOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
