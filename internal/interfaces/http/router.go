package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-electrico/internal/application/auth"
	"github.com/jhoicas/erp-electrico/internal/application/inventory"
	"github.com/jhoicas/erp-electrico/internal/application/purchasing"
	"github.com/jhoicas/erp-electrico/internal/application/sales"
	"github.com/jhoicas/erp-electrico/internal/application/usecase"
	"github.com/jhoicas/erp-electrico/internal/domain/entity"
	"github.com/jhoicas/erp-electrico/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	UserUC          *usecase.UserUseCase
	ProductUC       *usecase.ProductUseCase
	SupplierUC      *usecase.SupplierUseCase
	CustomerUC      *usecase.CustomerUseCase
	PurchaseOrderUC *purchasing.PurchaseOrderUseCase
	SaleUC          *sales.SaleUseCase
	LedgerUC        *inventory.StockLedgerUseCase
	Replenishment   *inventory.ReplenishmentUseCase
	JWTSecret       string
	Log             *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC, log)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/users", RequireRole(entity.RoleAdmin), authHandler.Register)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.LedgerUC, log)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Get("/:id/movements", productHandler.Movements)
	products.Get("/:id/ledger-check", productHandler.LedgerCheck)

	partnerHandler := NewPartnerHandler(deps.SupplierUC, deps.CustomerUC, log)
	suppliers := protected.Group("/suppliers")
	suppliers.Post("/", partnerHandler.CreateSupplier)
	suppliers.Get("/", partnerHandler.ListSuppliers)
	suppliers.Get("/:id", partnerHandler.GetSupplier)
	customers := protected.Group("/customers")
	customers.Post("/", partnerHandler.CreateCustomer)
	customers.Get("/", partnerHandler.ListCustomers)
	customers.Get("/:id", partnerHandler.GetCustomer)

	// Órdenes de compra: recibir mercancía solo admin o bodega.
	orders := protected.Group("/purchase-orders")
	orderHandler := NewPurchaseOrderHandler(deps.PurchaseOrderUC, log)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Patch("/:id/status", orderHandler.UpdateStatus)
	orders.Post("/:id/receive", RequireRole(entity.RoleAdmin, entity.RoleWarehouse), orderHandler.Receive)
	orders.Post("/:id/cancel", orderHandler.Cancel)

	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC, log)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Patch("/:id/status", saleHandler.UpdateStatus)
	salesGroup.Post("/:id/cancel", saleHandler.Cancel)
	salesGroup.Post("/:id/returns", saleHandler.Return)

	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC, deps.Replenishment, log)
	invGroup.Post("/adjustments", RequireRole(entity.RoleAdmin), inventoryHandler.Adjust)
	invGroup.Get("/reorder-list", inventoryHandler.ReorderList)
}
