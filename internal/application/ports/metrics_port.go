package ports

import "github.com/jhoicas/erp-electrico/internal/domain/entity"

// LedgerMetrics puerto de salida para contadores operativos del ciclo de órdenes
// y del libro de stock. El adaptador real publica en Prometheus.
type LedgerMetrics interface {
	// StockMovement cuenta un movimiento registrado y las unidades que movió.
	StockMovement(t entity.MovementType, quantity int)
	// OrderTransition cuenta un cambio de estado de una orden ("purchase_order" o "sale").
	OrderTransition(kind, status string)
	// Rejected cuenta una operación rechazada por regla de negocio.
	Rejected(operation, reason string)
}

// NopMetrics implementación vacía para tests y para cuando /metrics está deshabilitado.
type NopMetrics struct{}

func (NopMetrics) StockMovement(entity.MovementType, int) {}
func (NopMetrics) OrderTransition(string, string)         {}
func (NopMetrics) Rejected(string, string)                {}
