package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/erp-electrico/internal/application/auth"
	"github.com/jhoicas/erp-electrico/internal/application/inventory"
	"github.com/jhoicas/erp-electrico/internal/application/ports"
	"github.com/jhoicas/erp-electrico/internal/application/purchasing"
	"github.com/jhoicas/erp-electrico/internal/application/sales"
	"github.com/jhoicas/erp-electrico/internal/application/usecase"
	"github.com/jhoicas/erp-electrico/internal/infrastructure/metrics"
	"github.com/jhoicas/erp-electrico/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/erp-electrico/internal/interfaces/http"
	"github.com/jhoicas/erp-electrico/pkg/config"
	"github.com/jhoicas/erp-electrico/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var ledgerMetrics ports.LedgerMetrics = ports.NopMetrics{}
	var registry *metrics.Registry
	if cfg.Metrics.Enabled {
		registry = metrics.New()
		ledgerMetrics = registry
	}

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	orderRepo := postgres.NewPurchaseOrderRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	if registry != nil {
		app.Use(registry.Middleware())
		app.Get("/metrics", registry.Handler())
	}

	// Swagger UI en local: http://localhost:<port>/docs (solo si existe el archivo)
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "ERP Eléctrico API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		UserUC:          usecase.NewUserUseCase(userRepo),
		ProductUC:       usecase.NewProductUseCase(txRunner, productRepo),
		SupplierUC:      usecase.NewSupplierUseCase(supplierRepo),
		CustomerUC:      usecase.NewCustomerUseCase(customerRepo),
		PurchaseOrderUC: purchasing.NewPurchaseOrderUseCase(txRunner, supplierRepo, productRepo, orderRepo, ledgerMetrics, log),
		SaleUC:          sales.NewSaleUseCase(txRunner, customerRepo, productRepo, saleRepo, ledgerMetrics, log),
		LedgerUC:        inventory.NewStockLedgerUseCase(txRunner, productRepo, movementRepo, ledgerMetrics, log),
		Replenishment:   inventory.NewReplenishmentUseCase(productRepo),
		JWTSecret:       cfg.JWT.Secret,
		Log:             log.Named("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
