package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/erp-electrico/internal/application/dto"
	"github.com/jhoicas/erp-electrico/internal/application/ports"
	"github.com/jhoicas/erp-electrico/internal/domain"
	"github.com/jhoicas/erp-electrico/internal/domain/entity"
	"github.com/jhoicas/erp-electrico/internal/domain/repository"
	"github.com/jhoicas/erp-electrico/pkg/logger"
)

// StockLedgerUseCase consulta el libro de stock y registra ajustes manuales.
type StockLedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
	metrics     ports.LedgerMetrics
	log         *logger.Logger
	now         func() time.Time
}

// NewStockLedgerUseCase construye el caso de uso.
func NewStockLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	metrics ports.LedgerMetrics,
	log *logger.Logger,
) *StockLedgerUseCase {
	return &StockLedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
		metrics:     metrics,
		log:         log.Named("inventory"),
		now:         time.Now,
	}
}

// ListMovements devuelve el historial de movimientos de un producto, más reciente primero.
// from y to son opcionales e inclusivos.
func (uc *StockLedgerUseCase) ListMovements(ctx context.Context, productID string, from, to *time.Time, limit, offset int) (*dto.StockMovementListResponse, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrValidation)
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	list, err := uc.movRepo.ListByProduct(ctx, productID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, ToMovementResponse(m))
	}
	return &dto.StockMovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// VerifyLedger compara el stock actual con la suma con signo de todos sus movimientos.
func (uc *StockLedgerUseCase) VerifyLedger(ctx context.Context, productID string) (*dto.LedgerCheckResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	sum, err := uc.movRepo.SumByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	res := &dto.LedgerCheckResponse{
		ProductID:    productID,
		CurrentStock: product.CurrentStock,
		LedgerSum:    sum,
		Consistent:   sum == product.CurrentStock,
	}
	if !res.Consistent {
		uc.log.Warn().
			Str("product_id", productID).
			Int("current_stock", product.CurrentStock).
			Int("ledger_sum", sum).
			Msg("libro de stock descuadrado")
	}
	return res, nil
}

// Adjust registra un ajuste manual: Quantity positiva genera ADJUSTMENT_IN, negativa ADJUSTMENT_OUT.
// Un ajuste nunca deja el stock negativo.
func (uc *StockLedgerUseCase) Adjust(ctx context.Context, userID string, in dto.AdjustStockRequest) (*dto.StockMovementResponse, error) {
	if in.ProductID == "" || strings.TrimSpace(in.Notes) == "" {
		return nil, fmt.Errorf("%w: producto y motivo son obligatorios", domain.ErrValidation)
	}
	if in.Quantity == 0 {
		return nil, fmt.Errorf("%w: el ajuste no puede ser cero", domain.ErrQuantityViolation)
	}
	input := MovementInput{
		ProductID: in.ProductID,
		Type:      entity.MovementAdjustmentIn,
		Quantity:  in.Quantity,
		Reference: "AJUSTE",
		UserID:    userID,
		Notes:     strings.TrimSpace(in.Notes),
	}
	if in.Quantity < 0 {
		input.Type = entity.MovementAdjustmentOut
		input.Quantity = -in.Quantity
	}

	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		var err error
		mov, err = ApplyInTx(ctx, productRepo, movRepo, input, uc.now())
		return err
	})
	if err != nil {
		uc.metrics.Rejected("stock_adjustment", domain.Code(err))
		return nil, err
	}
	uc.metrics.StockMovement(mov.Type, mov.Quantity)
	uc.log.Info().
		Str("product_id", mov.ProductID).
		Str("type", string(mov.Type)).
		Int("quantity", mov.Quantity).
		Str("user_id", userID).
		Msg("ajuste de inventario registrado")
	res := ToMovementResponse(mov)
	return &res, nil
}

// ToMovementResponse convierte un movimiento del libro a su DTO.
func ToMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Type:      string(m.Type),
		Quantity:  m.Quantity,
		Delta:     m.Delta(),
		Reference: m.Reference,
		UserID:    m.UserID,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
	}
}
