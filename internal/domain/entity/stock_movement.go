package entity

import "time"

// MovementType etiqueta la causa de un cambio de stock. El signo del cambio
// está implícito en el tipo; Quantity siempre es la magnitud (> 0).
type MovementType string

const (
	MovementPurchase         MovementType = "PURCHASE"          // recepción de orden de compra (+)
	MovementSale             MovementType = "SALE"              // venta (-)
	MovementReturn           MovementType = "RETURN"            // devolución de cliente (+)
	MovementSaleCancellation MovementType = "SALE_CANCELLATION" // anulación de venta (+)
	MovementAdjustmentIn     MovementType = "ADJUSTMENT_IN"     // ajuste manual (+)
	MovementAdjustmentOut    MovementType = "ADJUSTMENT_OUT"    // ajuste manual (-)

	// MovementSupplierReturn queda reservado para la devolución a proveedor;
	// ninguna operación lo emite todavía, pero el libro y el CHECK de la tabla
	// ya lo aceptan con signo negativo.
	MovementSupplierReturn MovementType = "SUPPLIER_RETURN"
)

var movementTypes = []MovementType{
	MovementPurchase, MovementSale, MovementReturn, MovementSaleCancellation,
	MovementAdjustmentIn, MovementAdjustmentOut, MovementSupplierReturn,
}

// IsValid verifica que el tipo sea conocido.
func (t MovementType) IsValid() bool {
	for _, known := range movementTypes {
		if t == known {
			return true
		}
	}
	return false
}

// OutboundMovementTypes devuelve los tipos con signo negativo, derivados de Sign.
// El repositorio los usa para sumar el libro en SQL.
func OutboundMovementTypes() []string {
	var out []string
	for _, t := range movementTypes {
		if t.Sign() < 0 {
			out = append(out, string(t))
		}
	}
	return out
}

// Sign devuelve +1 para entradas y -1 para salidas.
func (t MovementType) Sign() int {
	switch t {
	case MovementSale, MovementSupplierReturn, MovementAdjustmentOut:
		return -1
	default:
		return 1
	}
}

// StockMovement es un hecho inmutable del libro de stock: nunca se actualiza ni se borra.
type StockMovement struct {
	ID        string
	ProductID string
	Type      MovementType
	Quantity  int    // magnitud, siempre positiva
	Reference string // id de la orden de compra o venta
	UserID    string
	Notes     string
	CreatedAt time.Time
}

// Delta devuelve el cambio con signo que el movimiento aplicó al stock.
func (m *StockMovement) Delta() int {
	return m.Type.Sign() * m.Quantity
}
