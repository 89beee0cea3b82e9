package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"nictech/internal/handlers"
	"nictech/internal/middleware"
	"nictech/internal/models"
	"nictech/internal/repositories"
	"nictech/internal/services"
	"nictech/pkg/mercadopago"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeProvider stands in for the MercadoPago API: it accepts preference
// creation and serves payment resources registered by each test.
type fakeProvider struct {
	mu       sync.Mutex
	payments map[string]string // payment id -> raw JSON resource
	server   *httptest.Server
}

func newFakeProvider(t *testing.T) *fakeProvider {
	p := &fakeProvider{payments: map[string]string{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/checkout/preferences", func(w http.ResponseWriter, r *http.Request) {
		var pref mercadopago.PreferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&pref); err != nil || len(pref.Items) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"message": "invalid preference"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id":                 "pref-test",
			"init_point":         "https://mp.example.com/init",
			"sandbox_init_point": "https://mp.example.com/sandbox",
		})
	})
	mux.HandleFunc("/v1/payments/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/v1/payments/"):]
		p.mu.Lock()
		body, ok := p.payments[id]
		p.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "payment not found"})
			return
		}
		w.Write([]byte(body))
	})
	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakeProvider) registerPayment(id, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payments[id] = body
}

type testEnv struct {
	app         *fiber.App
	provider    *fakeProvider
	productRepo repositories.ProductRepository
	orderRepo   repositories.OrderRepository
	repairRepo  repositories.RepairRepository
	authService *services.AuthService
}

// setupApp wires the full application against an in-memory SQLite database
// and the fake payment provider.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.ProductVariant{},
		&models.Order{},
		&models.Repair{}, &models.RepairLog{},
		&models.StaffAccount{},
	))

	provider := newFakeProvider(t)
	mpClient, err := mercadopago.NewClient(mercadopago.Config{
		AccessToken: "test-token",
		BaseURL:     provider.server.URL,
	})
	assert.NoError(t, err)

	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	repairRepo := repositories.NewGORMRepairRepository(db)
	staffRepo := repositories.NewGORMStaffRepository(db)

	checkoutService := services.NewCheckoutService(mpClient, "https://shop.example.com", "https://shop.example.com/api/v1/payments/webhook")
	webhookService := services.NewWebhookService(mpClient, orderRepo, productRepo, nil)
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo)
	repairService := services.NewRepairService(repairRepo)
	authService := services.NewAuthService(staffRepo, viper.GetString("JWT_SECRET"))
	assert.NoError(t, authService.EnsureAdmin("admin", "admin@example.com", "rootpass123"))

	app := fiber.New()
	app.Use(cors.New())

	apiV1 := app.Group("/api/v1")

	handlers.NewCheckoutHandler(checkoutService).RegisterRoutes(apiV1)
	handlers.NewWebhookHandler(webhookService).RegisterRoutes(apiV1)
	productHandler := handlers.NewProductHandler(productService)
	productHandler.RegisterPublicRoutes(apiV1)
	repairHandler := handlers.NewRepairHandler(repairService)
	repairHandler.RegisterPublicRoutes(apiV1)
	authHandler := handlers.NewAuthHandler(authService)
	authHandler.RegisterPublicRoutes(apiV1)

	staffRoutes := apiV1.Group("", middleware.StaffOnly(authService))
	repairHandler.RegisterAdminRoutes(staffRoutes)
	handlers.NewOrderHandler(orderService).RegisterRoutes(staffRoutes)

	adminRoutes := staffRoutes.Group("", middleware.AdminOnly())
	productHandler.RegisterAdminRoutes(adminRoutes)
	authHandler.RegisterAdminRoutes(adminRoutes)

	return &testEnv{
		app:         app,
		provider:    provider,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		repairRepo:  repairRepo,
		authService: authService,
	}
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// login obtains a token for an existing staff account.
func login(t *testing.T, env *testEnv, username, password string) string {
	t.Helper()
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.NotEmpty(t, body["token"])
	return body["token"]
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(ioutil.Discard)
	os.Exit(m.Run())
}

func TestCheckoutToApprovedOrderFlow(t *testing.T) {
	env := setupApp(t)
	assert.NoError(t, env.productRepo.Create(&models.Product{ID: "P1", Name: "Case", Price: 1000, Stock: 5}))

	// 1. Checkout: cart in, redirect URL out.
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/checkout", models.CheckoutRequest{
		Items: []models.CartItem{{ID: "P1", Name: "Case", Price: 1000, Quantity: 1}},
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var checkout models.CheckoutResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&checkout))
	resp.Body.Close()
	assert.Equal(t, "https://mp.example.com/init", checkout.InitPoint)

	// 2. The provider confirms the payment asynchronously.
	env.provider.registerPayment("42", `{
		"id": 42,
		"status": "approved",
		"transaction_amount": 1000,
		"additional_info": {"items": [{"id": "P1", "title": "Case", "quantity": "1"}]},
		"payer": {"first_name": "Ana", "email": "ana@example.com"}
	}`)

	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/payments/webhook?topic=payment&id=42", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// 3. Order recorded, stock decremented.
	order, err := env.orderRepo.GetByPaymentID("42")
	assert.NoError(t, err)
	assert.Equal(t, "approved", order.Status)
	assert.Equal(t, 1000.0, order.Total)

	product, err := env.productRepo.GetByID("P1")
	assert.NoError(t, err)
	assert.Equal(t, 4, product.Stock)
}

func TestWebhookDuplicateDelivery(t *testing.T) {
	env := setupApp(t)
	assert.NoError(t, env.productRepo.Create(&models.Product{ID: "P1", Name: "Case", Price: 1000, Stock: 5}))

	payment := `{
		"id": 77,
		"status": "approved",
		"transaction_amount": 1000,
		"additional_info": {"items": [{"id": "P1", "quantity": "1"}]},
		"payer": {}
	}`
	env.provider.registerPayment("77", payment)

	for i := 0; i < 2; i++ {
		resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/payments/webhook?topic=payment&id=77", nil), -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	orders, err := env.orderRepo.GetAll()
	assert.NoError(t, err)
	assert.Len(t, orders, 1, "redelivery must not duplicate the order")
}

func TestWebhookJSONBodyForm(t *testing.T) {
	env := setupApp(t)
	env.provider.registerPayment("55", `{
		"id": 55,
		"status": "pending",
		"transaction_amount": 500,
		"additional_info": {"items": []},
		"payer": {}
	}`)

	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/payments/webhook",
		map[string]interface{}{"type": "payment", "data": map[string]interface{}{"id": 55}}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	order, err := env.orderRepo.GetByPaymentID("55")
	assert.NoError(t, err)
	assert.Equal(t, "pending", order.Status)
}

func TestWebhookIgnoresIrrelevantNotifications(t *testing.T) {
	env := setupApp(t)

	// Unrecognized topic with no usable id must be acked, not failed.
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/payments/webhook?topic=merchant_order", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "ignored", body["status"])

	orders, err := env.orderRepo.GetAll()
	assert.NoError(t, err)
	assert.Empty(t, orders)
}

func TestWebhookLookupFailurePropagates(t *testing.T) {
	env := setupApp(t)

	// Payment id the provider does not know: the invocation must fail so
	// the provider redelivers later.
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/payments/webhook?topic=payment&id=404404", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := setupApp(t)

	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/checkout", models.CheckoutRequest{}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	env := setupApp(t)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp, err = env.app.Test(jsonRequest(http.MethodDelete, "/api/v1/products/P1", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAccountCreationIsNotPublic(t *testing.T) {
	env := setupApp(t)

	// The back office has no sign-up endpoint at all.
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "intruder",
		"email":    "intruder@example.com",
		"password": "password123",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Account creation exists only behind the admin surface.
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/staff", map[string]string{
		"username": "intruder",
		"email":    "intruder@example.com",
		"password": "password123",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// And the attempted account cannot log in.
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "intruder",
		"password": "password123",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestStaffRoleCannotManageCatalogOrAccounts(t *testing.T) {
	env := setupApp(t)
	assert.NoError(t, env.productRepo.Create(&models.Product{ID: "P1", Name: "Case", Price: 1000, Stock: 5}))

	adminToken := login(t, env, "admin", "rootpass123")

	// Admin provisions a regular staff account.
	req := jsonRequest(http.MethodPost, "/api/v1/auth/staff", map[string]string{
		"username": "techuser",
		"email":    "tech@example.com",
		"password": "password123",
	})
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	staffToken := login(t, env, "techuser", "password123")

	// Staff cannot delete catalog entries.
	req = jsonRequest(http.MethodDelete, "/api/v1/products/P1", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	product, err := env.productRepo.GetByID("P1")
	assert.NoError(t, err)
	assert.Equal(t, 5, product.Stock, "denied delete must leave the product untouched")

	// Staff cannot mint further accounts.
	req = jsonRequest(http.MethodPost, "/api/v1/auth/staff", map[string]string{
		"username": "another",
		"email":    "another@example.com",
		"password": "password123",
	})
	req.Header.Set("Authorization", "Bearer "+staffToken)
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// The admin can delete the product.
	req = jsonRequest(http.MethodDelete, "/api/v1/products/P1", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestAuthAndOrdersAdminFlow(t *testing.T) {
	env := setupApp(t)

	adminToken := login(t, env, "admin", "rootpass123")

	req := jsonRequest(http.MethodPost, "/api/v1/auth/staff", map[string]string{
		"username": "backoffice",
		"email":    "staff@example.com",
		"password": "password123",
	})
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	staffToken := login(t, env, "backoffice", "password123")

	assert.NoError(t, env.orderRepo.Upsert(&models.Order{PaymentID: "pay-9", Status: "approved", Total: 1000}))

	// Any staff account can read the orders surface.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken)
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var orders []models.Order
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
	resp.Body.Close()
	assert.Len(t, orders, 1)
	assert.Equal(t, "pay-9", orders[0].PaymentID)
}

func TestRepairTrackingFlow(t *testing.T) {
	env := setupApp(t)

	repairService := services.NewRepairService(env.repairRepo)
	created, err := repairService.CreateRepair(&models.Repair{
		ClientDNI:   "30123456",
		ClientName:  "Carlos",
		DeviceBrand: "Samsung",
		DeviceModel: "Galaxy A54",
	})
	assert.NoError(t, err)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/repairs/track?q="+created.TrackingCode, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var repair models.Repair
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&repair))
	resp.Body.Close()
	assert.Equal(t, created.TrackingCode, repair.TrackingCode)
	assert.Equal(t, models.RepairStatusReceived, repair.Status)

	// Unknown query is a 404, not an error page.
	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/repairs/track?q=99999999", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
