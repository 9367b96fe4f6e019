// seed carga el usuario administrador y el catálogo inicial de productos.
//
// Uso: go run ./cmd/seed -admin admin@almacen.co -password <clave> [-latin1] productos.csv
//
// El CSV usa ';' como separador y la cabecera sku;nombre;unidad;precio;minimo;stock.
// Las exportaciones de Excel en Windows llegan en ISO-8859-1: usar -latin1.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/erp-electrico/internal/application/auth"
	"github.com/jhoicas/erp-electrico/internal/application/dto"
	"github.com/jhoicas/erp-electrico/internal/application/usecase"
	"github.com/jhoicas/erp-electrico/internal/domain"
	"github.com/jhoicas/erp-electrico/internal/domain/entity"
	"github.com/jhoicas/erp-electrico/internal/infrastructure/postgres"
	"github.com/jhoicas/erp-electrico/pkg/config"
	"github.com/jhoicas/erp-electrico/pkg/logger"
)

func main() {
	adminEmail := flag.String("admin", "", "email del administrador a crear")
	adminPassword := flag.String("password", "", "clave del administrador")
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level}).Named("seed")

	ctx := context.Background()
	if err := postgres.Migrate(ctx, cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if *adminEmail != "" {
		authUC := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
			Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer,
		})
		_, err := authUC.RegisterUser(ctx, dto.RegisterRequest{
			Email: *adminEmail, Password: *adminPassword, Name: "Administrador", Role: entity.RoleAdmin,
		})
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			log.Info().Str("email", *adminEmail).Msg("administrador ya existe")
		case err != nil:
			log.Fatal().Err(err).Msg("crear administrador")
		default:
			log.Info().Str("email", *adminEmail).Msg("administrador creado")
		}
	}

	if flag.NArg() == 0 {
		return
	}
	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	var r io.Reader = f
	if *latin1 {
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	products, err := parseProducts(r)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	productUC := usecase.NewProductUseCase(postgres.NewTxRunner(pool), postgres.NewProductRepository(pool))
	var created, skipped int
	for _, p := range products {
		_, err := productUC.Create(ctx, "", p)
		if errors.Is(err, domain.ErrDuplicate) {
			skipped++
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Str("sku", p.SKU).Msg("crear producto")
		}
		created++
	}
	log.Info().Int("creados", created).Int("existentes", skipped).Msg("catálogo cargado")
}

// parseProducts lee el CSV del catálogo. La primera fila es cabecera.
func parseProducts(r io.Reader) ([]dto.CreateProductRequest, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = 6
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]dto.CreateProductRequest, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		price, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(row[3]), ",", "."))
		if err != nil {
			return nil, fmt.Errorf("línea %d: precio %q: %w", line, row[3], err)
		}
		minimum, err := strconv.Atoi(strings.TrimSpace(row[4]))
		if err != nil {
			return nil, fmt.Errorf("línea %d: mínimo %q: %w", line, row[4], err)
		}
		stock, err := strconv.Atoi(strings.TrimSpace(row[5]))
		if err != nil {
			return nil, fmt.Errorf("línea %d: stock %q: %w", line, row[5], err)
		}
		out = append(out, dto.CreateProductRequest{
			SKU:          strings.TrimSpace(row[0]),
			Name:         strings.TrimSpace(row[1]),
			Unit:         strings.TrimSpace(row[2]),
			Price:        price,
			MinimumStock: minimum,
			InitialStock: stock,
		})
	}
	return out, nil
}
