package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleWarehouse = "warehouse" // bodega: recibe mercancía
	RoleSeller    = "seller"    // vendedor
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un usuario del sistema; es el actor de cada movimiento de stock.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash
	Name         string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
