package memstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-electrico/internal/domain/entity"
	"github.com/jhoicas/erp-electrico/internal/domain/repository"
)

// ErrInjected error simulado por FailMovementAfter.
var ErrInjected = errors.New("memstore: fallo inyectado")

var (
	_ repository.ProductRepository       = (*productRepo)(nil)
	_ repository.StockMovementRepository = (*movementRepo)(nil)
	_ repository.PurchaseOrderRepository = (*orderRepo)(nil)
	_ repository.SaleRepository          = (*saleRepo)(nil)
	_ repository.SupplierRepository      = (*supplierRepo)(nil)
	_ repository.CustomerRepository      = (*customerRepo)(nil)
	_ repository.UserRepository          = (*userRepo)(nil)
)

type productRepo struct{ v *view }

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.read(func(d *state) error {
		d.products[p.ID] = *p
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read(func(d *state) error {
		if p, ok := d.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *productRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	r.v.s.ProductLocks = append(r.v.s.ProductLocks, id)
	return r.GetByID(ctx, id)
}

func (r *productRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read(func(d *state) error {
		for _, p := range d.products {
			if p.SKU == sku {
				p := p
				out = &p
			}
		}
		return nil
	})
	return out, err
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	return r.v.read(func(d *state) error {
		cur := d.products[p.ID]
		cur.Name, cur.Description, cur.Unit = p.Name, p.Description, p.Unit
		cur.Price, cur.MinimumStock, cur.UpdatedAt = p.Price, p.MinimumStock, p.UpdatedAt
		d.products[p.ID] = cur
		return nil
	})
}

func (r *productRepo) UpdateStock(_ context.Context, id string, stock int) error {
	return r.v.read(func(d *state) error {
		p := d.products[id]
		if stock < 0 {
			return errors.New("memstore: current_stock >= 0 violado")
		}
		p.CurrentStock = stock
		d.products[id] = p
		return nil
	})
}

func (r *productRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	return r.v.read(func(d *state) error {
		p := d.products[id]
		p.Cost = cost
		d.products[id] = p
		return nil
	})
}

func (r *productRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.read(func(d *state) error {
		for _, k := range sortedKeys(d.products) {
			p := d.products[k]
			out = append(out, &p)
		}
		return nil
	})
	return page(out, limit, offset), err
}

func (r *productRepo) ListBelowMinimum(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.read(func(d *state) error {
		for _, k := range sortedKeys(d.products) {
			p := d.products[k]
			if p.BelowMinimum() {
				out = append(out, &p)
			}
		}
		return nil
	})
	return out, err
}

type movementRepo struct{ v *view }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	if r.v.inTx && r.v.s.FailMovementAfter > 0 {
		if r.v.movsTx >= r.v.s.FailMovementAfter {
			return ErrInjected
		}
		r.v.movsTx++
	}
	return r.v.read(func(d *state) error {
		d.movements = append(d.movements, *m)
		return nil
	})
}

func (r *movementRepo) ListByProduct(_ context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.v.read(func(d *state) error {
		for i := len(d.movements) - 1; i >= 0; i-- {
			m := d.movements[i]
			if m.ProductID != productID {
				continue
			}
			if from != nil && m.CreatedAt.Before(*from) {
				continue
			}
			if to != nil && m.CreatedAt.After(*to) {
				continue
			}
			out = append(out, &m)
		}
		return nil
	})
	return page(out, limit, offset), err
}

func (r *movementRepo) ListByReference(_ context.Context, reference string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.v.read(func(d *state) error {
		for _, m := range d.movements {
			if m.Reference == reference {
				m := m
				out = append(out, &m)
			}
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) SumByProduct(_ context.Context, productID string) (int, error) {
	sum := 0
	err := r.v.read(func(d *state) error {
		for _, m := range d.movements {
			if m.ProductID == productID {
				sum += m.Delta()
			}
		}
		return nil
	})
	return sum, err
}

type orderRepo struct{ v *view }

func copyOrder(o entity.PurchaseOrder) *entity.PurchaseOrder {
	o.Items = append([]entity.PurchaseItem(nil), o.Items...)
	return &o
}

func (r *orderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	return r.v.read(func(d *state) error {
		d.orders[o.ID] = *copyOrder(*o)
		return nil
	})
}

func (r *orderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := r.v.read(func(d *state) error {
		if o, ok := d.orders[id]; ok {
			out = copyOrder(o)
		}
		return nil
	})
	return out, err
}

func (r *orderRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *orderRepo) UpdateStatus(_ context.Context, id string, status entity.PurchaseOrderStatus, actualDelivery *time.Time) error {
	return r.v.read(func(d *state) error {
		o := d.orders[id]
		o.Status = status
		o.ActualDelivery = actualDelivery
		o.UpdatedAt = time.Now()
		d.orders[id] = o
		return nil
	})
}

func (r *orderRepo) UpdateItemReceived(_ context.Context, itemID string, received int) error {
	return r.v.read(func(d *state) error {
		for id, o := range d.orders {
			for i := range o.Items {
				if o.Items[i].ID == itemID {
					if received > o.Items[i].Quantity {
						return errors.New("memstore: received_quantity <= quantity violado")
					}
					o.Items = append([]entity.PurchaseItem(nil), o.Items...)
					o.Items[i].ReceivedQuantity = received
					d.orders[id] = o
					return nil
				}
			}
		}
		return nil
	})
}

func (r *orderRepo) List(_ context.Context, f repository.PurchaseOrderFilter, limit, offset int) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	err := r.v.read(func(d *state) error {
		for _, k := range sortedKeys(d.orders) {
			o := d.orders[k]
			if f.Status != "" && o.Status != f.Status {
				continue
			}
			if f.SupplierID != "" && o.SupplierID != f.SupplierID {
				continue
			}
			out = append(out, copyOrder(o))
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), err
}

type saleRepo struct{ v *view }

func copySale(s entity.Sale) *entity.Sale {
	s.Items = append([]entity.SaleItem(nil), s.Items...)
	return &s
}

func (r *saleRepo) Create(_ context.Context, s *entity.Sale) error {
	return r.v.read(func(d *state) error {
		d.sales[s.ID] = *copySale(*s)
		return nil
	})
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.v.read(func(d *state) error {
		if s, ok := d.sales[id]; ok {
			out = copySale(s)
		}
		return nil
	})
	return out, err
}

func (r *saleRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) UpdateStatus(_ context.Context, id string, status entity.SaleStatus, notes string) error {
	return r.v.read(func(d *state) error {
		s := d.sales[id]
		s.Status = status
		s.Notes = notes
		s.UpdatedAt = time.Now()
		d.sales[id] = s
		return nil
	})
}

func (r *saleRepo) UpdateItemReturned(_ context.Context, itemID string, returned int) error {
	return r.v.read(func(d *state) error {
		for id, s := range d.sales {
			for i := range s.Items {
				if s.Items[i].ID == itemID {
					if returned > s.Items[i].Quantity {
						return errors.New("memstore: returned_quantity <= quantity violado")
					}
					s.Items = append([]entity.SaleItem(nil), s.Items...)
					s.Items[i].ReturnedQuantity = returned
					d.sales[id] = s
					return nil
				}
			}
		}
		return nil
	})
}

func (r *saleRepo) List(_ context.Context, f repository.SaleFilter, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.v.read(func(d *state) error {
		for _, k := range sortedKeys(d.sales) {
			s := d.sales[k]
			if f.Status != "" && s.Status != f.Status {
				continue
			}
			if f.CustomerID != "" && (s.CustomerID == nil || *s.CustomerID != f.CustomerID) {
				continue
			}
			out = append(out, copySale(s))
		}
		return nil
	})
	return page(out, limit, offset), err
}

type supplierRepo struct{ v *view }

func (r *supplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	return r.v.read(func(d *state) error {
		d.suppliers[s.ID] = *s
		return nil
	})
}

func (r *supplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.v.read(func(d *state) error {
		if s, ok := d.suppliers[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *supplierRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.v.read(func(d *state) error {
		for _, s := range d.suppliers {
			if s.TaxID == taxID {
				s := s
				out = &s
			}
		}
		return nil
	})
	return out, err
}

func (r *supplierRepo) List(_ context.Context, limit, offset int) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	err := r.v.read(func(d *state) error {
		for _, k := range sortedKeys(d.suppliers) {
			s := d.suppliers[k]
			out = append(out, &s)
		}
		return nil
	})
	return page(out, limit, offset), err
}

type customerRepo struct{ v *view }

func (r *customerRepo) Create(_ context.Context, c *entity.Customer) error {
	return r.v.read(func(d *state) error {
		d.customers[c.ID] = *c
		return nil
	})
}

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.v.read(func(d *state) error {
		if c, ok := d.customers[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *customerRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.v.read(func(d *state) error {
		for _, c := range d.customers {
			if c.TaxID != "" && c.TaxID == taxID {
				c := c
				out = &c
			}
		}
		return nil
	})
	return out, err
}

func (r *customerRepo) List(_ context.Context, limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	err := r.v.read(func(d *state) error {
		for _, k := range sortedKeys(d.customers) {
			c := d.customers[k]
			out = append(out, &c)
		}
		return nil
	})
	return page(out, limit, offset), err
}

type userRepo struct{ v *view }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	return r.v.read(func(d *state) error {
		d.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.v.read(func(d *state) error {
		if u, ok := d.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.v.read(func(d *state) error {
		for _, u := range d.users {
			if u.Email == email {
				u := u
				out = &u
			}
		}
		return nil
	})
	return out, err
}
