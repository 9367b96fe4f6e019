package entity

import "time"

// Supplier representa un proveedor de materiales.
type Supplier struct {
	ID        string
	Name      string
	TaxID     string // NIT normalizado, único
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
