package entity

import "time"

// Customer representa un cliente del almacén. TaxID es opcional (venta de mostrador).
type Customer struct {
	ID        string
	Name      string
	TaxID     string // NIT o Cédula
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
