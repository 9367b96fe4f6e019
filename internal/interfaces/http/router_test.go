package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/erp-electrico/internal/application/auth"
	"github.com/jhoicas/erp-electrico/internal/application/dto"
	"github.com/jhoicas/erp-electrico/internal/application/inventory"
	"github.com/jhoicas/erp-electrico/internal/application/ports"
	"github.com/jhoicas/erp-electrico/internal/application/purchasing"
	"github.com/jhoicas/erp-electrico/internal/application/sales"
	"github.com/jhoicas/erp-electrico/internal/application/usecase"
	"github.com/jhoicas/erp-electrico/internal/domain/entity"
	apphttp "github.com/jhoicas/erp-electrico/internal/interfaces/http"
	"github.com/jhoicas/erp-electrico/internal/testutil/memstore"
	"github.com/jhoicas/erp-electrico/pkg/logger"
)

const (
	supplierID = "0b7c5a2e-4d1f-4c8a-9e3b-6f2a1d0c9b81"
	productID  = "5e9d3c1a-8b2f-4a6e-b7d4-2c1f0e9a8b73"
)

type apiFixture struct {
	app   *fiber.App
	store *memstore.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memstore.New()
	log := logger.Nop()

	hash, err := bcrypt.GenerateFromPassword([]byte("clave-segura"), bcrypt.MinCost)
	require.NoError(t, err)
	store.SeedUser(entity.User{ID: "u-admin", Email: "admin@almacen.co", PasswordHash: string(hash),
		Name: "Admin", Role: entity.RoleAdmin, Status: entity.UserStatusActive})
	store.SeedSupplier(supplierID, "Distribuidora Andina")
	store.SeedProduct(productID, "CAB-THHN-12", 3, 5, decimal.NewFromInt(3500), decimal.NewFromInt(2000))

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:     auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 5, Issuer: testIssuer}),
		UserUC:     usecase.NewUserUseCase(store.Users()),
		ProductUC:  usecase.NewProductUseCase(store, store.Products()),
		SupplierUC: usecase.NewSupplierUseCase(store.Suppliers()),
		CustomerUC: usecase.NewCustomerUseCase(store.Customers()),
		PurchaseOrderUC: purchasing.NewPurchaseOrderUseCase(store, store.Suppliers(), store.Products(),
			store.Orders(), ports.NopMetrics{}, log),
		SaleUC: sales.NewSaleUseCase(store, store.Customers(), store.Products(),
			store.Sales(), ports.NopMetrics{}, log),
		LedgerUC:      inventory.NewStockLedgerUseCase(store, store.Products(), store.Movements(), ports.NopMetrics{}, log),
		Replenishment: inventory.NewReplenishmentUseCase(store.Products()),
		JWTSecret:     testJWTSecret,
		Log:           log,
	})
	return &apiFixture{app: app, store: store}
}

func (f *apiFixture) call(t *testing.T, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	out, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, out
}

func TestAPI_Login(t *testing.T) {
	f := newAPI(t)
	resp, body := f.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@almacen.co", Password: "clave-segura"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, "admin", out.User.Role)

	resp, _ = f.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@almacen.co", Password: "incorrecta"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = f.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "no-es-email"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "VALIDATION")
}

func TestAPI_RegistroDeUsuariosSoloAdmin(t *testing.T) {
	f := newAPI(t)
	in := dto.RegisterRequest{Email: "bodega@almacen.co", Password: "clave-segura", Role: "warehouse"}

	resp, _ := f.call(t, http.MethodPost, "/api/users", "seller", in)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := f.call(t, http.MethodPost, "/api/users", "admin", in)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, _ = f.call(t, http.MethodPost, "/api/users", "admin", in)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_OrdenDeCompraYRecepcion(t *testing.T) {
	f := newAPI(t)

	resp, body := f.call(t, http.MethodPost, "/api/purchase-orders", "admin", dto.CreatePurchaseOrderRequest{
		SupplierID: supplierID,
		Items:      []dto.PurchaseItemRequest{{ProductID: productID, Quantity: 10, UnitPrice: decimal.NewFromInt(2000)}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var po dto.PurchaseOrderResponse
	require.NoError(t, json.Unmarshal(body, &po))
	receivePath := "/api/purchase-orders/" + po.ID + "/receive"
	itemID := po.Items[0].ID

	resp, _ = f.call(t, http.MethodPost, receivePath, "seller", dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceiveItemRequest{{ItemID: itemID, Quantity: 6}},
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "vendedor no recibe mercancía")

	resp, body = f.call(t, http.MethodPost, receivePath, "warehouse", dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceiveItemRequest{{ItemID: itemID, Quantity: 6}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &po))
	assert.Equal(t, "PARTIALLY_RECEIVED", po.Status)

	resp, body = f.call(t, http.MethodPost, receivePath, "warehouse", dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceiveItemRequest{{ItemID: itemID, Quantity: 5}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "QUANTITY_VIOLATION")

	resp, body = f.call(t, http.MethodPost, "/api/purchase-orders/"+po.ID+"/cancel", "admin", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "INVALID_STATE")

	assert.Equal(t, 9, f.store.Product(productID).CurrentStock)
	assert.Equal(t, 9, f.store.LedgerSum(productID))
}

func TestAPI_VentaSinStockYDevolucion(t *testing.T) {
	f := newAPI(t)

	resp, body := f.call(t, http.MethodPost, "/api/sales", "seller", dto.CreateSaleRequest{
		PaymentMethod: "CASH",
		Items:         []dto.SaleItemRequest{{ProductID: productID, Quantity: 4}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(body), "INSUFFICIENT_STOCK")

	resp, body = f.call(t, http.MethodPost, "/api/sales", "seller", dto.CreateSaleRequest{
		PaymentMethod: "CASH",
		Items:         []dto.SaleItemRequest{{ProductID: productID, Quantity: 3}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var sale dto.SaleResponse
	require.NoError(t, json.Unmarshal(body, &sale))

	resp, _ = f.call(t, http.MethodPost, "/api/sales/"+sale.ID+"/returns", "seller", dto.ReturnRequest{
		Items: []dto.ReturnItemRequest{{SaleItemID: sale.Items[0].ID, Quantity: 1}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "motivo obligatorio")

	resp, body = f.call(t, http.MethodPost, "/api/sales/"+sale.ID+"/returns", "seller", dto.ReturnRequest{
		Items:  []dto.ReturnItemRequest{{SaleItemID: sale.Items[0].ID, Quantity: 1}},
		Reason: "empaque dañado",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var ret dto.ReturnResponse
	require.NoError(t, json.Unmarshal(body, &ret))
	assert.False(t, ret.FullReturn)
	assert.Equal(t, 1, f.store.Product(productID).CurrentStock)
}

func TestAPI_AjusteYLibro(t *testing.T) {
	f := newAPI(t)

	resp, _ := f.call(t, http.MethodPost, "/api/inventory/adjustments", "warehouse", dto.AdjustStockRequest{
		ProductID: productID, Quantity: 2, Notes: "conteo físico",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := f.call(t, http.MethodPost, "/api/inventory/adjustments", "admin", dto.AdjustStockRequest{
		ProductID: productID, Quantity: -5, Notes: "conteo físico",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, string(body))

	resp, body = f.call(t, http.MethodPost, "/api/inventory/adjustments", "admin", dto.AdjustStockRequest{
		ProductID: productID, Quantity: -1, Notes: "conteo físico",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = f.call(t, http.MethodGet, "/api/products/"+productID+"/ledger-check", "seller", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var check dto.LedgerCheckResponse
	require.NoError(t, json.Unmarshal(body, &check))
	assert.True(t, check.Consistent)
	assert.Equal(t, 2, check.CurrentStock)

	resp, body = f.call(t, http.MethodGet, "/api/products/"+productID+"/movements?from=ayer", "seller", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = f.call(t, http.MethodGet, "/api/inventory/reorder-list", "seller", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "CAB-THHN-12")
}

func TestAPI_NoEncontrado(t *testing.T) {
	f := newAPI(t)
	resp, body := f.call(t, http.MethodGet, "/api/sales/no-existe", "seller", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "NOT_FOUND")

	resp, _ = f.call(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_IDMalFormadoEsNoEncontrado(t *testing.T) {
	f := newAPI(t)
	resp, body := f.call(t, http.MethodPost, "/api/purchase-orders/abc/receive", "warehouse", dto.ReceivePurchaseOrderRequest{
		Items: []dto.ReceiveItemRequest{{ItemID: productID, Quantity: 1}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "NOT_FOUND")

	for _, path := range []string{"/api/products/x/ledger-check", "/api/suppliers/x", "/api/customers/x", "/api/purchase-orders/x"} {
		resp, _ = f.call(t, http.MethodGet, path, "admin", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestAPI_CuerpoConIDOCantidadInvalida(t *testing.T) {
	f := newAPI(t)

	resp, body := f.call(t, http.MethodPost, "/api/sales", "seller", dto.CreateSaleRequest{
		PaymentMethod: "CASH",
		Items:         []dto.SaleItemRequest{{ProductID: "x", Quantity: 1}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "product_id: debe ser un UUID")

	resp, body = f.call(t, http.MethodPost, "/api/purchase-orders", "admin", dto.CreatePurchaseOrderRequest{
		SupplierID: supplierID,
		Items:      []dto.PurchaseItemRequest{{ProductID: productID, Quantity: 3000000000, UnitPrice: decimal.NewFromInt(2000)}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
	assert.Contains(t, string(body), "VALIDATION")

	resp, body = f.call(t, http.MethodPost, "/api/inventory/adjustments", "admin", dto.AdjustStockRequest{
		ProductID: productID, Quantity: -2000000, Notes: "conteo físico",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	customer := "no-uuid"
	resp, _ = f.call(t, http.MethodPost, "/api/sales", "seller", dto.CreateSaleRequest{
		CustomerID:    &customer,
		PaymentMethod: "CASH",
		Items:         []dto.SaleItemRequest{{ProductID: productID, Quantity: 1}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, 3, f.store.Product(productID).CurrentStock)
}

func TestAPI_Paginacion(t *testing.T) {
	f := newAPI(t)
	resp, _ := f.call(t, http.MethodGet, "/api/products?limit=50&offset=0", "seller", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	for _, q := range []string{"limit=0", "limit=101", "offset=-1", "limit=muchos"} {
		resp, body := f.call(t, http.MethodGet, "/api/products?"+q, "seller", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.Contains(t, string(body), "VALIDATION", q)
	}
}
