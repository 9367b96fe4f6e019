package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/erp-electrico/internal/domain/entity"
	"github.com/jhoicas/erp-electrico/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de stock sobre PostgreSQL. Solo inserta; un trigger impide UPDATE y DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, product_id, type, quantity, reference, user_id, notes, created_at`

// Create inserta un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `INSERT INTO stock_movements (` + movementColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, string(m.Type), m.Quantity, m.Reference, m.UserID, m.Notes, m.CreatedAt,
	)
	if err != nil {
		return wrapWriteErr("insert stock movement", err)
	}
	return nil
}

// ListByProduct lista movimientos de un producto, más reciente primero; from/to opcionales e inclusivos.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if !validID(productID) {
		return nil, nil
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements
		WHERE product_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY seq DESC
		LIMIT $4 OFFSET $5`
	return r.list(ctx, query, productID, from, to, limit, offset)
}

// ListByReference lista los movimientos de una orden o venta en orden de inserción.
func (r *StockMovementRepo) ListByReference(ctx context.Context, reference string) ([]*entity.StockMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE reference = $1 ORDER BY seq`, reference)
}

// SumByProduct suma con signo todos los movimientos del producto. Los tipos
// de salida vienen de entity.OutboundMovementTypes.
func (r *StockMovementRepo) SumByProduct(ctx context.Context, productID string) (int, error) {
	if !validID(productID) {
		return 0, nil
	}
	var sum int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN type = ANY($2::text[])
		                         THEN -quantity ELSE quantity END), 0)
		FROM stock_movements WHERE product_id = $1`, productID, entity.OutboundMovementTypes()).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum stock movements: %w", err)
	}
	return int(sum), nil
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var typ string
		if err := rows.Scan(&m.ID, &m.ProductID, &typ, &m.Quantity, &m.Reference, &m.UserID, &m.Notes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.Type = entity.MovementType(typ)
		list = append(list, &m)
	}
	return list, rows.Err()
}
