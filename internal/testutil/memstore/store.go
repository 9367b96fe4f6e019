// Package memstore implementa los puertos de persistencia en memoria para tests de casos
// de uso y handlers. Cada transacción toma el candado global, trabaja sobre el estado
// vivo y lo restaura desde una copia si fn devuelve error, igual que un ROLLBACK.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-electrico/internal/domain/entity"
	"github.com/jhoicas/erp-electrico/internal/domain/repository"
)

type state struct {
	products  map[string]entity.Product
	movements []entity.StockMovement
	orders    map[string]entity.PurchaseOrder
	sales     map[string]entity.Sale
	suppliers map[string]entity.Supplier
	customers map[string]entity.Customer
	users     map[string]entity.User
}

func newState() *state {
	return &state{
		products:  map[string]entity.Product{},
		orders:    map[string]entity.PurchaseOrder{},
		sales:     map[string]entity.Sale{},
		suppliers: map[string]entity.Supplier{},
		customers: map[string]entity.Customer{},
		users:     map[string]entity.User{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	c.movements = append([]entity.StockMovement(nil), s.movements...)
	for k, v := range s.orders {
		v.Items = append([]entity.PurchaseItem(nil), v.Items...)
		c.orders[k] = v
	}
	for k, v := range s.sales {
		v.Items = append([]entity.SaleItem(nil), v.Items...)
		c.sales[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

// Store estado compartido. El cero no sirve: usar New.
type Store struct {
	mu   sync.Mutex
	data *state

	// FailMovementAfter, si > 0, hace fallar la inserción de movimiento número N+1
	// dentro de una transacción (simula una caída a mitad de la operación).
	FailMovementAfter int
	// ProductLocks registra el orden en que se bloquearon productos (GetByIDForUpdate).
	ProductLocks []string
}

// New crea un store vacío.
func New() *Store {
	return &Store{data: newState()}
}

// view acceso al estado: dentro de una tx el candado ya está tomado.
type view struct {
	s      *Store
	inTx   bool
	movsTx int
}

func (v *view) read(fn func(d *state) error) error {
	if !v.inTx {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	return fn(v.s.data)
}

func (s *Store) outside() *view { return &view{s: s} }

// runTx ejecuta fn con el candado tomado y restaura el estado si falla.
func (s *Store) runTx(fn func(v *view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.data.clone()
	if err := fn(&view{s: s, inTx: true}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(repository.StockMovementRepository, repository.ProductRepository) error) error {
	return s.runTx(func(v *view) error {
		return fn(&movementRepo{v}, &productRepo{v})
	})
}

// RunPurchasing implementa purchasing.TxRunner.
func (s *Store) RunPurchasing(ctx context.Context, fn func(repository.PurchaseOrderRepository, repository.ProductRepository, repository.StockMovementRepository) error) error {
	return s.runTx(func(v *view) error {
		return fn(&orderRepo{v}, &productRepo{v}, &movementRepo{v})
	})
}

// RunSales implementa sales.TxRunner.
func (s *Store) RunSales(ctx context.Context, fn func(repository.SaleRepository, repository.ProductRepository, repository.StockMovementRepository) error) error {
	return s.runTx(func(v *view) error {
		return fn(&saleRepo{v}, &productRepo{v}, &movementRepo{v})
	})
}

// Repositorios fuera de transacción.
func (s *Store) Products() repository.ProductRepository        { return &productRepo{s.outside()} }
func (s *Store) Movements() repository.StockMovementRepository { return &movementRepo{s.outside()} }
func (s *Store) Orders() repository.PurchaseOrderRepository    { return &orderRepo{s.outside()} }
func (s *Store) Sales() repository.SaleRepository              { return &saleRepo{s.outside()} }
func (s *Store) Suppliers() repository.SupplierRepository      { return &supplierRepo{s.outside()} }
func (s *Store) Customers() repository.CustomerRepository      { return &customerRepo{s.outside()} }
func (s *Store) Users() repository.UserRepository              { return &userRepo{s.outside()} }

// SeedProduct inserta un producto con stock inicial respaldado por un ADJUSTMENT_IN,
// para que el libro cuadre desde el principio.
func (s *Store) SeedProduct(id, sku string, stock, minimum int, price, cost decimal.Decimal) entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	p := entity.Product{
		ID: id, SKU: sku, Name: sku, Unit: "und",
		Price: price, Cost: cost, CurrentStock: stock, MinimumStock: minimum,
		CreatedAt: now, UpdatedAt: now,
	}
	s.data.products[id] = p
	if stock > 0 {
		s.data.movements = append(s.data.movements, entity.StockMovement{
			ID: "seed-" + id, ProductID: id, Type: entity.MovementAdjustmentIn,
			Quantity: stock, Reference: "SEED", CreatedAt: now,
		})
	}
	return p
}

// SeedSupplier inserta un proveedor.
func (s *Store) SeedSupplier(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.suppliers[id] = entity.Supplier{ID: id, Name: name, TaxID: "NIT-" + id, CreatedAt: time.Now()}
}

// SeedCustomer inserta un cliente.
func (s *Store) SeedCustomer(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.customers[id] = entity.Customer{ID: id, Name: name, CreatedAt: time.Now()}
}

// SeedUser inserta un usuario.
func (s *Store) SeedUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.users[u.ID] = u
}

// Product devuelve una copia del producto.
func (s *Store) Product(id string) entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.products[id]
}

// MovementsOf devuelve los movimientos del producto en orden de inserción.
func (s *Store) MovementsOf(productID string) []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.StockMovement
	for _, m := range s.data.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

// MovementCount total de movimientos.
func (s *Store) MovementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.movements)
}

// LedgerSum suma con signo de los movimientos de un producto.
func (s *Store) LedgerSum(productID string) int {
	sum := 0
	for _, m := range s.MovementsOf(productID) {
		sum += m.Delta()
	}
	return sum
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
