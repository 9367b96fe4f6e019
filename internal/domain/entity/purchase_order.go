package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus estado de una orden de compra.
type PurchaseOrderStatus string

const (
	PurchaseOrderPending           PurchaseOrderStatus = "PENDING"
	PurchaseOrderApproved          PurchaseOrderStatus = "APPROVED"
	PurchaseOrderOrdered           PurchaseOrderStatus = "ORDERED"
	PurchaseOrderPartiallyReceived PurchaseOrderStatus = "PARTIALLY_RECEIVED"
	PurchaseOrderReceived          PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderCancelled         PurchaseOrderStatus = "CANCELLED"
)

// Transiciones manuales permitidas. PARTIALLY_RECEIVED y RECEIVED solo se
// alcanzan recibiendo mercancía.
var purchaseOrderTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	PurchaseOrderPending:  {PurchaseOrderApproved, PurchaseOrderCancelled},
	PurchaseOrderApproved: {PurchaseOrderOrdered, PurchaseOrderCancelled},
	PurchaseOrderOrdered:  {PurchaseOrderCancelled},
}

var purchaseOrderLabels = map[PurchaseOrderStatus]string{
	PurchaseOrderPending:           "Pendiente",
	PurchaseOrderApproved:          "Aprobada",
	PurchaseOrderOrdered:           "Pedida",
	PurchaseOrderPartiallyReceived: "Recibida parcialmente",
	PurchaseOrderReceived:          "Recibida",
	PurchaseOrderCancelled:         "Cancelada",
}

// IsValid verifica que el estado sea conocido.
func (s PurchaseOrderStatus) IsValid() bool {
	_, ok := purchaseOrderLabels[s]
	return ok
}

// IsTerminal indica si la orden ya no admite cambios de estado.
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == PurchaseOrderReceived || s == PurchaseOrderCancelled
}

// CanTransitionTo indica si el cambio manual de estado es válido.
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	for _, t := range purchaseOrderTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// CanCancel falso una vez que llegó mercancía o si ya está cancelada.
func (s PurchaseOrderStatus) CanCancel() bool {
	return s.CanTransitionTo(PurchaseOrderCancelled)
}

// Label nombre legible del estado.
func (s PurchaseOrderStatus) Label() string {
	if l, ok := purchaseOrderLabels[s]; ok {
		return l
	}
	return string(s)
}

// PurchaseItem línea de una orden de compra.
type PurchaseItem struct {
	ID               string
	PurchaseOrderID  string
	ProductID        string
	Quantity         int
	ReceivedQuantity int // acumulado, nunca decrece ni supera Quantity
	UnitPrice        decimal.Decimal
	Total            decimal.Decimal
}

// Pending cantidad que falta por recibir.
func (i *PurchaseItem) Pending() int {
	return i.Quantity - i.ReceivedQuantity
}

// IsFullyReceived indica si la línea llegó completa.
func (i *PurchaseItem) IsFullyReceived() bool {
	return i.ReceivedQuantity >= i.Quantity
}

// PurchaseOrder orden de compra a un proveedor.
type PurchaseOrder struct {
	ID               string
	SupplierID       string
	UserID           string
	OrderDate        time.Time
	ExpectedDelivery *time.Time
	ActualDelivery   *time.Time
	Status           PurchaseOrderStatus
	TotalAmount      decimal.Decimal // fijado al crear
	Notes            string
	Items            []PurchaseItem
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Item busca una línea de la orden por ID.
func (o *PurchaseOrder) Item(itemID string) *PurchaseItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// ReceivingStatus calcula el estado según lo recibido: RECEIVED si todas las
// líneas están completas, PARTIALLY_RECEIVED si alguna tiene recibido > 0,
// si no el estado actual.
func (o *PurchaseOrder) ReceivingStatus() PurchaseOrderStatus {
	if len(o.Items) == 0 {
		return o.Status
	}
	all, some := true, false
	for i := range o.Items {
		if !o.Items[i].IsFullyReceived() {
			all = false
		}
		if o.Items[i].ReceivedQuantity > 0 {
			some = true
		}
	}
	switch {
	case all:
		return PurchaseOrderReceived
	case some:
		return PurchaseOrderPartiallyReceived
	default:
		return o.Status
	}
}

// SumTotal suma los totales de línea con aritmética decimal exacta.
func SumTotal(lines []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l)
	}
	return total
}
