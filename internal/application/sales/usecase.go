package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/erp-electrico/internal/application/dto"
	"github.com/jhoicas/erp-electrico/internal/application/inventory"
	"github.com/jhoicas/erp-electrico/internal/application/ports"
	"github.com/jhoicas/erp-electrico/internal/domain"
	"github.com/jhoicas/erp-electrico/internal/domain/entity"
	"github.com/jhoicas/erp-electrico/internal/domain/repository"
	"github.com/jhoicas/erp-electrico/pkg/logger"
)

const metricKind = "sale"

// SaleUseCase ciclo de vida de ventas. Crear una venta descuenta stock (SALE) y
// anularla devuelve al stock lo que no se había devuelto ya (SALE_CANCELLATION).
type SaleUseCase struct {
	txRunner     TxRunner
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	saleRepo     repository.SaleRepository
	metrics      ports.LedgerMetrics
	log          *logger.Logger
	now          func() time.Time
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(
	txRunner TxRunner,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	metrics ports.LedgerMetrics,
	log *logger.Logger,
) *SaleUseCase {
	return &SaleUseCase{
		txRunner:     txRunner,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		saleRepo:     saleRepo,
		metrics:      metrics,
		log:          log.Named("sales"),
		now:          time.Now,
	}
}

// Create registra la venta PENDING y descuenta el stock de cada línea en la misma transacción.
// Un precio unitario en cero toma el precio de lista del producto.
func (uc *SaleUseCase) Create(ctx context.Context, userID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la venta debe tener al menos una línea", domain.ErrValidation)
	}
	method := strings.ToUpper(strings.TrimSpace(in.PaymentMethod))
	if !entity.IsValidPaymentMethod(method) {
		return nil, fmt.Errorf("%w: medio de pago %q", domain.ErrValidation, in.PaymentMethod)
	}
	var customerID *string
	if in.CustomerID != nil && strings.TrimSpace(*in.CustomerID) != "" {
		customer, err := uc.customerRepo.GetByID(ctx, *in.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, *in.CustomerID)
		}
		customerID = &customer.ID
	}

	now := uc.now()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		CustomerID:    customerID,
		UserID:        userID,
		PaymentMethod: method,
		Status:        entity.SalePending,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	totals := make([]decimal.Decimal, 0, len(in.Items))
	inputs := make([]inventory.MovementInput, 0, len(in.Items))
	for i, line := range in.Items {
		if line.ProductID == "" || line.Quantity <= 0 || line.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: línea %d requiere producto y cantidad positiva", domain.ErrValidation, i+1)
		}
		product, err := uc.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, line.ProductID)
		}
		price := line.UnitPrice
		if price.IsZero() {
			price = product.Price
		}
		if !price.IsPositive() {
			return nil, fmt.Errorf("%w: el producto %s no tiene precio", domain.ErrValidation, product.SKU)
		}
		total := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		sale.Items = append(sale.Items, entity.SaleItem{
			ID:        uuid.New().String(),
			SaleID:    sale.ID,
			ProductID: product.ID,
			Quantity:  line.Quantity,
			UnitPrice: price,
			Total:     total,
		})
		totals = append(totals, total)
		inputs = append(inputs, inventory.MovementInput{
			ProductID: product.ID,
			Type:      entity.MovementSale,
			Quantity:  line.Quantity,
			Reference: sale.ID,
			UserID:    userID,
		})
	}
	sale.TotalAmount = entity.SumTotal(totals)

	var movements []*entity.StockMovement
	err := uc.txRunner.RunSales(ctx, func(saleRepo repository.SaleRepository, productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) error {
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		var err error
		movements, err = inventory.ApplyAllInTx(ctx, productRepo, movRepo, inputs, now)
		return err
	})
	if err != nil {
		uc.metrics.Rejected("sale_create", domain.Code(err))
		uc.log.Warn().Err(err).Msg("venta rechazada")
		return nil, err
	}
	uc.recordMovements(movements)
	uc.metrics.OrderTransition(metricKind, string(sale.Status))
	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("payment_method", sale.PaymentMethod).
		Str("total", sale.TotalAmount.String()).
		Msg("venta registrada")
	return toSaleResponse(sale), nil
}

// AdvanceStatus aplica un cambio manual de estado según la tabla de transiciones.
// CANCELLED se delega en Cancel para devolver el stock.
func (uc *SaleUseCase) AdvanceStatus(ctx context.Context, saleID, userID, status string) (*dto.SaleResponse, error) {
	target := entity.SaleStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrValidation, status)
	}
	if target == entity.SaleCancelled {
		return uc.Cancel(ctx, saleID, userID)
	}

	var sale *entity.Sale
	err := uc.txRunner.RunSales(ctx, func(saleRepo repository.SaleRepository, _ repository.ProductRepository, _ repository.StockMovementRepository) error {
		var err error
		sale, err = lockSale(ctx, saleRepo, saleID)
		if err != nil {
			return err
		}
		if !sale.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: la venta está %s y no puede pasar a %s", domain.ErrInvalidState, sale.Status, target)
		}
		sale.Status = target
		sale.UpdatedAt = uc.now()
		return saleRepo.UpdateStatus(ctx, sale.ID, sale.Status, sale.Notes)
	})
	if err != nil {
		uc.metrics.Rejected("sale_status", domain.Code(err))
		return nil, err
	}
	uc.metrics.OrderTransition(metricKind, string(sale.Status))
	uc.log.Info().Str("sale_id", sale.ID).Str("status", string(sale.Status)).Msg("estado de venta actualizado")
	return toSaleResponse(sale), nil
}

// Cancel anula la venta y devuelve al stock la cantidad de cada línea que no fue devuelta antes.
func (uc *SaleUseCase) Cancel(ctx context.Context, saleID, userID string) (*dto.SaleResponse, error) {
	var (
		sale      *entity.Sale
		movements []*entity.StockMovement
	)
	err := uc.txRunner.RunSales(ctx, func(saleRepo repository.SaleRepository, productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) error {
		var err error
		sale, err = lockSale(ctx, saleRepo, saleID)
		if err != nil {
			return err
		}
		if !sale.Status.CanTransitionTo(entity.SaleCancelled) {
			return fmt.Errorf("%w: no se puede anular una venta %s", domain.ErrInvalidState, sale.Status)
		}
		now := uc.now()
		inputs := make([]inventory.MovementInput, 0, len(sale.Items))
		for _, it := range sale.Items {
			if outstanding := it.Returnable(); outstanding > 0 {
				inputs = append(inputs, inventory.MovementInput{
					ProductID: it.ProductID,
					Type:      entity.MovementSaleCancellation,
					Quantity:  outstanding,
					Reference: sale.ID,
					UserID:    userID,
				})
			}
		}
		movements, err = inventory.ApplyAllInTx(ctx, productRepo, movRepo, inputs, now)
		if err != nil {
			return err
		}
		sale.Status = entity.SaleCancelled
		sale.AppendNote("Venta anulada")
		sale.UpdatedAt = now
		return saleRepo.UpdateStatus(ctx, sale.ID, sale.Status, sale.Notes)
	})
	if err != nil {
		uc.metrics.Rejected("sale_cancel", domain.Code(err))
		return nil, err
	}
	uc.recordMovements(movements)
	uc.metrics.OrderTransition(metricKind, string(sale.Status))
	uc.log.Info().Str("sale_id", sale.ID).Int("lines_restocked", len(movements)).Msg("venta anulada")
	return toSaleResponse(sale), nil
}

// Get devuelve una venta con sus líneas.
func (uc *SaleUseCase) Get(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
	}
	return toSaleResponse(sale), nil
}

// List lista ventas con filtros opcionales de estado y cliente.
func (uc *SaleUseCase) List(ctx context.Context, status, customerID string, limit, offset int) (*dto.SaleListResponse, error) {
	filter := repository.SaleFilter{CustomerID: customerID}
	if status != "" {
		filter.Status = entity.SaleStatus(strings.ToUpper(status))
		if !filter.Status.IsValid() {
			return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrValidation, status)
		}
	}
	list, err := uc.saleRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSaleResponse(s))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func (uc *SaleUseCase) recordMovements(movements []*entity.StockMovement) {
	for _, m := range movements {
		uc.metrics.StockMovement(m.Type, m.Quantity)
	}
}

func lockSale(ctx context.Context, saleRepo repository.SaleRepository, saleID string) (*entity.Sale, error) {
	sale, err := saleRepo.GetByIDForUpdate(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
	}
	return sale, nil
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ID:               it.ID,
			ProductID:        it.ProductID,
			Quantity:         it.Quantity,
			ReturnedQuantity: it.ReturnedQuantity,
			UnitPrice:        it.UnitPrice,
			Total:            it.Total,
		})
	}
	return &dto.SaleResponse{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		UserID:        s.UserID,
		PaymentMethod: s.PaymentMethod,
		Status:        string(s.Status),
		StatusLabel:   s.Status.Label(),
		TotalAmount:   s.TotalAmount,
		Notes:         s.Notes,
		Items:         items,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
