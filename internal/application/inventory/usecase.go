package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-electrico/internal/domain"
	"github.com/jhoicas/erp-electrico/internal/domain/entity"
	"github.com/jhoicas/erp-electrico/internal/domain/inventory"
	"github.com/jhoicas/erp-electrico/internal/domain/repository"
)

// MovementInput describe un cambio de stock a registrar en el libro.
// Quantity es la magnitud (> 0); el signo lo da Type.
type MovementInput struct {
	ProductID string
	Type      entity.MovementType
	Quantity  int
	Reference string
	UserID    string
	Notes     string
	// UnitCost solo aplica a entradas por compra: recalcula el costo promedio ponderado.
	UnitCost *decimal.Decimal
}

// ApplyInTx bloquea la fila del producto (SELECT FOR UPDATE), aplica el delta al stock
// y guarda el movimiento, usando los repositorios de la transacción del llamador.
// Si el stock quedaría negativo devuelve domain.ErrInsufficientStock y no escribe nada.
func ApplyInTx(
	ctx context.Context,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	in MovementInput,
	now time.Time,
) (*entity.StockMovement, error) {
	if !in.Type.IsValid() {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrValidation, in.Type)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: cantidad de movimiento %d", domain.ErrQuantityViolation, in.Quantity)
	}

	product, err := productRepo.GetByIDForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}

	delta := in.Type.Sign() * in.Quantity
	newStock := product.CurrentStock + delta
	if newStock < 0 {
		return nil, fmt.Errorf("%w: producto %s tiene %d, se requieren %d",
			domain.ErrInsufficientStock, product.SKU, product.CurrentStock, in.Quantity)
	}

	if in.Type == entity.MovementPurchase && in.UnitCost != nil {
		newCost := inventory.CostCalculator(product.CurrentStock, product.Cost, in.Quantity, *in.UnitCost)
		if err := productRepo.UpdateCost(ctx, product.ID, newCost); err != nil {
			return nil, err
		}
	}
	if err := productRepo.UpdateStock(ctx, product.ID, newStock); err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Reference: in.Reference,
		UserID:    in.UserID,
		Notes:     in.Notes,
		CreatedAt: now,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// SortByProduct ordena las entradas por ProductID para que todas las transacciones
// bloqueen las filas de productos en el mismo orden.
func SortByProduct(inputs []MovementInput) {
	sort.SliceStable(inputs, func(i, j int) bool {
		return inputs[i].ProductID < inputs[j].ProductID
	})
}

// ApplyAllInTx aplica varios movimientos en orden de producto. Se detiene en el primer error;
// el rollback de la transacción descarta lo ya aplicado.
func ApplyAllInTx(
	ctx context.Context,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	inputs []MovementInput,
	now time.Time,
) ([]*entity.StockMovement, error) {
	SortByProduct(inputs)
	out := make([]*entity.StockMovement, 0, len(inputs))
	for _, in := range inputs {
		mov, err := ApplyInTx(ctx, productRepo, movRepo, in, now)
		if err != nil {
			return nil, err
		}
		out = append(out, mov)
	}
	return out, nil
}
