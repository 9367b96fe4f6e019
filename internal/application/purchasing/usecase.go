package purchasing

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

const metricKind = "purchase_order"

// PurchaseOrderUseCase ciclo de vida de órdenes de compra: creación, avance de estado,
// recepción de mercancía y anulación.
type PurchaseOrderUseCase struct {
	txRunner     TxRunner
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
	orderRepo    repository.PurchaseOrderRepository
	metrics      ports.LedgerMetrics
	log          *logger.Logger
	now          func() time.Time
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(
	txRunner TxRunner,
	supplierRepo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.PurchaseOrderRepository,
	metrics ports.LedgerMetrics,
	log *logger.Logger,
) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{
		txRunner:     txRunner,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		metrics:      metrics,
		log:          log.Named("purchasing"),
		now:          time.Now,
	}
}

// Create registra una orden PENDING con sus líneas. El total se calcula aquí, nunca se recibe.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, userID string, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if in.SupplierID == "" {
		return nil, fmt.Errorf("%w: proveedor obligatorio", domain.ErrValidation)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la orden debe tener al menos una línea", domain.ErrValidation)
	}
	supplier, err := uc.supplierRepo.GetByID(ctx, in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, in.SupplierID)
	}

	now := uc.now()
	order := &entity.PurchaseOrder{
		ID:               uuid.New().String(),
		SupplierID:       supplier.ID,
		UserID:           userID,
		OrderDate:        now,
		ExpectedDelivery: in.ExpectedDelivery,
		Status:           entity.PurchaseOrderPending,
		Notes:            strings.TrimSpace(in.Notes),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	totals := make([]decimal.Decimal, 0, len(in.Items))
	for i, line := range in.Items {
		if line.ProductID == "" || line.Quantity <= 0 || !line.UnitPrice.IsPositive() {
			return nil, fmt.Errorf("%w: línea %d requiere producto, cantidad y precio positivos", domain.ErrValidation, i+1)
		}
		product, err := uc.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, line.ProductID)
		}
		total := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		order.Items = append(order.Items, entity.PurchaseItem{
			ID:              uuid.New().String(),
			PurchaseOrderID: order.ID,
			ProductID:       product.ID,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			Total:           total,
		})
		totals = append(totals, total)
	}
	order.TotalAmount = entity.SumTotal(totals)

	err = uc.txRunner.RunPurchasing(ctx, func(orderRepo repository.PurchaseOrderRepository, _ repository.ProductRepository, _ repository.StockMovementRepository) error {
		return orderRepo.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.OrderTransition(metricKind, string(order.Status))
	uc.log.Info().
		Str("purchase_order_id", order.ID).
		Str("supplier_id", order.SupplierID).
		Int("items", len(order.Items)).
		Str("total", order.TotalAmount.String()).
		Msg("orden de compra creada")
	return toPurchaseOrderResponse(order), nil
}

// AdvanceStatus aplica un cambio manual de estado según la tabla de transiciones.
// CANCELLED se delega en Cancel. Los estados de recepción no se fijan a mano.
func (uc *PurchaseOrderUseCase) AdvanceStatus(ctx context.Context, orderID, status string) (*dto.PurchaseOrderResponse, error) {
	target := entity.PurchaseOrderStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrValidation, status)
	}
	if target == entity.PurchaseOrderCancelled {
		return uc.Cancel(ctx, orderID)
	}

	var order *entity.PurchaseOrder
	err := uc.txRunner.RunPurchasing(ctx, func(orderRepo repository.PurchaseOrderRepository, _ repository.ProductRepository, _ repository.StockMovementRepository) error {
		var err error
		order, err = lockOrder(ctx, orderRepo, orderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return fmt.Errorf("%w: la orden está cerrada (%s)", domain.ErrInvalidState, order.Status)
		}
		if !order.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: la orden está %s y no puede pasar a %s", domain.ErrInvalidState, order.Status, target)
		}
		order.Status = target
		order.UpdatedAt = uc.now()
		return orderRepo.UpdateStatus(ctx, order.ID, order.Status, order.ActualDelivery)
	})
	if err != nil {
		uc.metrics.Rejected("purchase_order_status", domain.Code(err))
		return nil, err
	}
	uc.metrics.OrderTransition(metricKind, string(order.Status))
	uc.log.Info().Str("purchase_order_id", order.ID).Str("status", string(order.Status)).Msg("estado de orden de compra actualizado")
	return toPurchaseOrderResponse(order), nil
}

// Cancel anula la orden. Solo desde PENDING, APPROVED u ORDERED: si ya entró mercancía
// la anulación se rechaza y el stock recibido permanece.
func (uc *PurchaseOrderUseCase) Cancel(ctx context.Context, orderID string) (*dto.PurchaseOrderResponse, error) {
	var order *entity.PurchaseOrder
	err := uc.txRunner.RunPurchasing(ctx, func(orderRepo repository.PurchaseOrderRepository, _ repository.ProductRepository, _ repository.StockMovementRepository) error {
		var err error
		order, err = lockOrder(ctx, orderRepo, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanCancel() {
			return fmt.Errorf("%w: no se puede anular una orden %s", domain.ErrInvalidState, order.Status)
		}
		order.Status = entity.PurchaseOrderCancelled
		order.UpdatedAt = uc.now()
		return orderRepo.UpdateStatus(ctx, order.ID, order.Status, order.ActualDelivery)
	})
	if err != nil {
		uc.metrics.Rejected("purchase_order_cancel", domain.Code(err))
		return nil, err
	}
	uc.metrics.OrderTransition(metricKind, string(order.Status))
	uc.log.Info().Str("purchase_order_id", order.ID).Msg("orden de compra anulada")
	return toPurchaseOrderResponse(order), nil
}

// Receive registra un lote de mercancía recibida. Cada línea del lote trae la cantidad
// recibida ahora (delta). Se valida el lote completo antes de escribir: si una línea
// excede lo pendiente no se aplica ninguna. Por cada delta positivo suma stock, recalcula
// el costo promedio y deja un movimiento PURCHASE; al final recalcula el estado.
func (uc *PurchaseOrderUseCase) Receive(ctx context.Context, orderID, userID string, in dto.ReceivePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: el lote de recepción está vacío", domain.ErrValidation)
	}

	var (
		order     *entity.PurchaseOrder
		movements []*entity.StockMovement
	)
	err := uc.txRunner.RunPurchasing(ctx, func(orderRepo repository.PurchaseOrderRepository, productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) error {
		var err error
		order, err = lockOrder(ctx, orderRepo, orderID)
		if err != nil {
			return err
		}
		if order.Status == entity.PurchaseOrderCancelled {
			return fmt.Errorf("%w: la orden está anulada", domain.ErrInvalidState)
		}

		deltas, err := aggregateReceipt(order, in.Items)
		if err != nil {
			return err
		}

		now := uc.now()
		inputs := make([]inventory.MovementInput, 0, len(deltas))
		for i := range order.Items {
			item := &order.Items[i]
			delta := deltas[item.ID]
			if delta == 0 {
				continue
			}
			item.ReceivedQuantity += delta
			if err := orderRepo.UpdateItemReceived(ctx, item.ID, item.ReceivedQuantity); err != nil {
				return err
			}
			unitCost := item.UnitPrice
			inputs = append(inputs, inventory.MovementInput{
				ProductID: item.ProductID,
				Type:      entity.MovementPurchase,
				Quantity:  delta,
				Reference: order.ID,
				UserID:    userID,
				Notes:     strings.TrimSpace(in.Notes),
				UnitCost:  &unitCost,
			})
		}
		movements, err = inventory.ApplyAllInTx(ctx, productRepo, movRepo, inputs, now)
		if err != nil {
			return err
		}

		order.Status = order.ReceivingStatus()
		order.ActualDelivery = &now
		order.UpdatedAt = now
		return orderRepo.UpdateStatus(ctx, order.ID, order.Status, order.ActualDelivery)
	})
	if err != nil {
		uc.metrics.Rejected("purchase_order_receive", domain.Code(err))
		uc.log.Warn().Err(err).Str("purchase_order_id", orderID).Msg("recepción rechazada")
		return nil, err
	}

	units := 0
	for _, m := range movements {
		uc.metrics.StockMovement(m.Type, m.Quantity)
		units += m.Quantity
	}
	uc.metrics.OrderTransition(metricKind, string(order.Status))
	uc.log.Info().
		Str("purchase_order_id", order.ID).
		Str("status", string(order.Status)).
		Int("units", units).
		Msg("mercancía recibida")
	return toPurchaseOrderResponse(order), nil
}

// aggregateReceipt suma las líneas repetidas del lote y valida cada total contra lo pendiente.
func aggregateReceipt(order *entity.PurchaseOrder, lines []dto.ReceiveItemRequest) (map[string]int, error) {
	deltas := make(map[string]int, len(lines))
	for _, line := range lines {
		item := order.Item(line.ItemID)
		if item == nil {
			return nil, fmt.Errorf("%w: la línea %s no pertenece a la orden", domain.ErrNotFound, line.ItemID)
		}
		if line.Quantity < 0 {
			return nil, fmt.Errorf("%w: cantidad recibida negativa en la línea %s", domain.ErrQuantityViolation, line.ItemID)
		}
		deltas[item.ID] += line.Quantity
	}
	for id, delta := range deltas {
		item := order.Item(id)
		if item.ReceivedQuantity+delta > item.Quantity {
			return nil, fmt.Errorf("%w: la línea %s tiene %d pendientes y se intentan recibir %d",
				domain.ErrQuantityViolation, id, item.Pending(), delta)
		}
	}
	return deltas, nil
}

// Get devuelve una orden con sus líneas.
func (uc *PurchaseOrderUseCase) Get(ctx context.Context, orderID string) (*dto.PurchaseOrderResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: orden de compra %s", domain.ErrNotFound, orderID)
	}
	return toPurchaseOrderResponse(order), nil
}

// List lista órdenes con filtros opcionales de estado y proveedor.
func (uc *PurchaseOrderUseCase) List(ctx context.Context, status, supplierID string, limit, offset int) (*dto.PurchaseOrderListResponse, error) {
	filter := repository.PurchaseOrderFilter{SupplierID: supplierID}
	if status != "" {
		filter.Status = entity.PurchaseOrderStatus(strings.ToUpper(status))
		if !filter.Status.IsValid() {
			return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrValidation, status)
		}
	}
	list, err := uc.orderRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseOrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toPurchaseOrderResponse(o))
	}
	return &dto.PurchaseOrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func lockOrder(ctx context.Context, orderRepo repository.PurchaseOrderRepository, orderID string) (*entity.PurchaseOrder, error) {
	order, err := orderRepo.GetByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: orden de compra %s", domain.ErrNotFound, orderID)
	}
	return order, nil
}

func toPurchaseOrderResponse(o *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	items := make([]dto.PurchaseItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.PurchaseItemResponse{
			ID:               it.ID,
			ProductID:        it.ProductID,
			Quantity:         it.Quantity,
			ReceivedQuantity: it.ReceivedQuantity,
			PendingQuantity:  it.Pending(),
			UnitPrice:        it.UnitPrice,
			Total:            it.Total,
		})
	}
	return &dto.PurchaseOrderResponse{
		ID:               o.ID,
		SupplierID:       o.SupplierID,
		UserID:           o.UserID,
		OrderDate:        o.OrderDate,
		ExpectedDelivery: o.ExpectedDelivery,
		ActualDelivery:   o.ActualDelivery,
		Status:           string(o.Status),
		StatusLabel:      o.Status.Label(),
		TotalAmount:      o.TotalAmount,
		Notes:            o.Notes,
		Items:            items,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}
