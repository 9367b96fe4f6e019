package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/erp-electrico/internal/domain/entity"
	"github.com/jhoicas/erp-electrico/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas y sus líneas sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, customer_id, user_id, payment_method, status, total_amount, notes, created_at, updated_at`

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var status string
	err := row.Scan(&s.ID, &s.CustomerID, &s.UserID, &s.PaymentMethod, &status, &s.TotalAmount, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Status = entity.SaleStatus(status)
	return &s, nil
}

// Create persiste cabecera y líneas. Debe llamarse dentro de una transacción.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `INSERT INTO sales (`+saleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.CustomerID, s.UserID, s.PaymentMethod, string(s.Status), s.TotalAmount, s.Notes, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return wrapWriteErr("insert sale", err)
	}
	for i, it := range s.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO sale_items (id, sale_id, product_id, quantity, returned_quantity, unit_price, total, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.ID, s.ID, it.ProductID, it.Quantity, it.ReturnedQuantity, it.UnitPrice, it.Total, i,
		)
		if err != nil {
			return wrapWriteErr("insert sale item", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con sus líneas.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetByIDForUpdate bloquea la cabecera (SELECT FOR UPDATE) y carga las líneas.
func (r *SaleRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) get(ctx context.Context, query, id string) (*entity.Sale, error) {
	if !validID(id) {
		return nil, nil
	}
	s, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	items, err := r.loadItems(ctx, []string{s.ID})
	if err != nil {
		return nil, err
	}
	s.Items = items[s.ID]
	return s, nil
}

// UpdateStatus fija estado y notas (las notas ya vienen concatenadas).
func (r *SaleRepo) UpdateStatus(ctx context.Context, id string, status entity.SaleStatus, notes string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE sales SET status = $2, notes = $3, updated_at = now() WHERE id = $1`,
		id, string(status), notes,
	)
	if err != nil {
		return wrapWriteErr("update sale status", err)
	}
	return nil
}

// UpdateItemReturned fija el acumulado devuelto de una línea.
func (r *SaleRepo) UpdateItemReturned(ctx context.Context, itemID string, returnedQuantity int) error {
	_, err := r.q.Exec(ctx,
		`UPDATE sale_items SET returned_quantity = $2 WHERE id = $1`,
		itemID, returnedQuantity,
	)
	if err != nil {
		return wrapWriteErr("update sale item", err)
	}
	return nil
}

// List lista ventas (más recientes primero) con sus líneas.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter, limit, offset int) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, `SELECT `+saleColumns+` FROM sales
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR customer_id::text = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		string(f.Status), f.CustomerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var (
		list []*entity.Sale
		ids  []string
	)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
		ids = append(ids, s.ID)
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
	for _, s := range list {
		s.Items = items[s.ID]
	}
	return list, nil
}

func (r *SaleRepo) loadItems(ctx context.Context, saleIDs []string) (map[string][]entity.SaleItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, returned_quantity, unit_price, total
		FROM sale_items WHERE sale_id = ANY($1::uuid[])
		ORDER BY sale_id, position`, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]entity.SaleItem, len(saleIDs))
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.ReturnedQuantity, &it.UnitPrice, &it.Total); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		out[it.SaleID] = append(out[it.SaleID], it)
	}
	return out, rows.Err()
}
