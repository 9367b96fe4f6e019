package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-electrico/internal/domain/entity"
	"github.com/jhoicas/erp-electrico/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo órdenes de compra y sus líneas sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const purchaseOrderColumns = `id, supplier_id, user_id, order_date, expected_delivery, actual_delivery,
	status, total_amount, notes, created_at, updated_at`

func scanPurchaseOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	var status string
	err := row.Scan(&o.ID, &o.SupplierID, &o.UserID, &o.OrderDate, &o.ExpectedDelivery, &o.ActualDelivery,
		&status, &o.TotalAmount, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = entity.PurchaseOrderStatus(status)
	return &o, nil
}

// Create persiste cabecera y líneas. Debe llamarse dentro de una transacción.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `INSERT INTO purchase_orders (`+purchaseOrderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.SupplierID, o.UserID, o.OrderDate, o.ExpectedDelivery, o.ActualDelivery,
		string(o.Status), o.TotalAmount, o.Notes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return wrapWriteErr("insert purchase order", err)
	}
	for i, it := range o.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO purchase_items (id, purchase_order_id, product_id, quantity, received_quantity, unit_price, total, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.ID, o.ID, it.ProductID, it.Quantity, it.ReceivedQuantity, it.UnitPrice, it.Total, i,
		)
		if err != nil {
			return wrapWriteErr("insert purchase item", err)
		}
	}
	return nil
}

// GetByID obtiene la orden con sus líneas.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1`, id)
}

// GetByIDForUpdate bloquea la cabecera (SELECT FOR UPDATE) y carga las líneas.
func (r *PurchaseOrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *PurchaseOrderRepo) get(ctx context.Context, query, id string) (*entity.PurchaseOrder, error) {
	if !validID(id) {
		return nil, nil
	}
	o, err := scanPurchaseOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	items, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// UpdateStatus fija estado y fecha de entrega.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, id string, status entity.PurchaseOrderStatus, actualDelivery *time.Time) error {
	_, err := r.q.Exec(ctx,
		`UPDATE purchase_orders SET status = $2, actual_delivery = $3, updated_at = now() WHERE id = $1`,
		id, string(status), actualDelivery,
	)
	if err != nil {
		return wrapWriteErr("update purchase order status", err)
	}
	return nil
}

// UpdateItemReceived fija el acumulado recibido de una línea.
func (r *PurchaseOrderRepo) UpdateItemReceived(ctx context.Context, itemID string, receivedQuantity int) error {
	_, err := r.q.Exec(ctx,
		`UPDATE purchase_items SET received_quantity = $2 WHERE id = $1`,
		itemID, receivedQuantity,
	)
	if err != nil {
		return wrapWriteErr("update purchase item", err)
	}
	return nil
}

// List lista órdenes (más recientes primero) con sus líneas.
func (r *PurchaseOrderRepo) List(ctx context.Context, f repository.PurchaseOrderFilter, limit, offset int) ([]*entity.PurchaseOrder, error) {
	rows, err := r.q.Query(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR supplier_id::text = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		string(f.Status), f.SupplierID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var (
		list []*entity.PurchaseOrder
		ids  []string
	)
	for rows.Next() {
		o, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range list {
		o.Items = items[o.ID]
	}
	return list, nil
}

func (r *PurchaseOrderRepo) loadItems(ctx context.Context, orderIDs []string) (map[string][]entity.PurchaseItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, purchase_order_id, product_id, quantity, received_quantity, unit_price, total
		FROM purchase_items WHERE purchase_order_id = ANY($1::uuid[])
		ORDER BY purchase_order_id, position`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list purchase items: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]entity.PurchaseItem, len(orderIDs))
	for rows.Next() {
		var it entity.PurchaseItem
		if err := rows.Scan(&it.ID, &it.PurchaseOrderID, &it.ProductID, &it.Quantity, &it.ReceivedQuantity, &it.UnitPrice, &it.Total); err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		out[it.PurchaseOrderID] = append(out[it.PurchaseOrderID], it)
	}
	return out, rows.Err()
}
