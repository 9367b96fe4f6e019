package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus estado de una venta.
type SaleStatus string

const (
	SalePending    SaleStatus = "PENDING"
	SaleProcessing SaleStatus = "PROCESSING"
	SaleShipped    SaleStatus = "SHIPPED"
	SaleDelivered  SaleStatus = "DELIVERED"
	SaleCompleted  SaleStatus = "COMPLETED"
	SaleCancelled  SaleStatus = "CANCELLED"
)

var saleTransitions = map[SaleStatus][]SaleStatus{
	SalePending:    {SaleProcessing, SaleCancelled},
	SaleProcessing: {SaleShipped, SaleCancelled},
	SaleShipped:    {SaleDelivered, SaleCancelled},
	SaleDelivered:  {SaleCompleted},
}

var saleLabels = map[SaleStatus]string{
	SalePending:    "Pendiente",
	SaleProcessing: "En proceso",
	SaleShipped:    "Despachada",
	SaleDelivered:  "Entregada",
	SaleCompleted:  "Completada",
	SaleCancelled:  "Anulada",
}

// IsValid verifica que el estado sea conocido.
func (s SaleStatus) IsValid() bool {
	_, ok := saleLabels[s]
	return ok
}

// CanTransitionTo indica si el cambio manual de estado es válido.
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	for _, t := range saleTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Label nombre legible del estado.
func (s SaleStatus) Label() string {
	if l, ok := saleLabels[s]; ok {
		return l
	}
	return string(s)
}

// Medios de pago aceptados.
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentTransfer = "TRANSFER"
	PaymentCredit   = "CREDIT"
)

// IsValidPaymentMethod valida el medio de pago.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentCredit:
		return true
	}
	return false
}

// SaleItem línea de una venta.
type SaleItem struct {
	ID               string
	SaleID           string
	ProductID        string
	Quantity         int
	ReturnedQuantity int // acumulado de devoluciones, nunca supera Quantity
	UnitPrice        decimal.Decimal
	Total            decimal.Decimal
}

// Returnable cantidad que todavía se puede devolver.
func (i *SaleItem) Returnable() int {
	return i.Quantity - i.ReturnedQuantity
}

// Sale venta a un cliente (opcional: mostrador).
type Sale struct {
	ID            string
	CustomerID    *string
	UserID        string
	PaymentMethod string
	Status        SaleStatus
	TotalAmount   decimal.Decimal // fijado al crear
	Notes         string
	Items         []SaleItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Item busca una línea de la venta por ID.
func (s *Sale) Item(itemID string) *SaleItem {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return &s.Items[i]
		}
	}
	return nil
}

// FullyReturned indica si todas las líneas fueron devueltas por completo.
func (s *Sale) FullyReturned() bool {
	if len(s.Items) == 0 {
		return false
	}
	for i := range s.Items {
		if s.Items[i].ReturnedQuantity < s.Items[i].Quantity {
			return false
		}
	}
	return true
}

// AppendNote concatena una nota a las existentes sin reemplazarlas.
func (s *Sale) AppendNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if s.Notes == "" {
		s.Notes = note
		return
	}
	s.Notes = s.Notes + "\n" + note
}
