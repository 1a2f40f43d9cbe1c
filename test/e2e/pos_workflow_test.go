//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/kirana-be/internal/adapters/db"
	redis_a "github.com/ammerola/kirana-be/internal/adapters/redis_adapter"
	"github.com/ammerola/kirana-be/internal/core/services"
	"github.com/ammerola/kirana-be/internal/handlers"
	"github.com/ammerola/kirana-be/internal/handlers/middleware"
	"github.com/ammerola/kirana-be/internal/invoice"
	"github.com/ammerola/kirana-be/internal/pkg/config"
	"github.com/ammerola/kirana-be/internal/session"
	"github.com/ammerola/kirana-be/test/helpers"
)

const testUnlockPassword = "test-password"

// memArtifacts keeps rendered invoices in memory so checkout and the
// invoice endpoints run without object storage.
type memArtifacts struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemArtifacts() *memArtifacts {
	return &memArtifacts{blobs: make(map[string][]byte)}
}

func (m *memArtifacts) Upload(_ context.Context, key string, body io.Reader, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return nil
}

func (m *memArtifacts) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("artifact not found: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memArtifacts) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *memArtifacts) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok, nil
}

func (m *memArtifacts) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://artifacts.test/" + key, nil
}

// nopEnqueuer satisfies the task port without a broker.
type nopEnqueuer struct{}

func (nopEnqueuer) EnqueueInvoiceRender(context.Context, uuid.UUID) error { return nil }
func (nopEnqueuer) EnqueuePriceListImport(context.Context, string) error  { return nil }

type POSWorkflowSuite struct {
	suite.Suite
	server    *httptest.Server
	client    *http.Client
	baseURL   string
	token     string
	testDB    *helpers.TestDB
	testRedis *helpers.TestRedis
	artifacts *memArtifacts
}

func (s *POSWorkflowSuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.testRedis = helpers.SetupTestRedis(s.T())

	s.server = s.startTestServer()
	s.client = &http.Client{Timeout: 10 * time.Second}
	s.baseURL = s.server.URL + "/api/v1"
}

func (s *POSWorkflowSuite) TearDownSuite() {
	s.server.Close()
}

func (s *POSWorkflowSuite) startTestServer() *httptest.Server {
	slogger := helpers.TestLogger()

	cache := redis_a.NewCache(s.testRedis.Client, 5*time.Minute, slogger)
	s.artifacts = newMemArtifacts()

	catalogRepo := db.NewCatalogRepository(s.testDB.Database, slogger)
	salesRepo := db.NewSalesRepository(s.testDB.Database, slogger)
	sessions := session.NewStore(slogger)
	renderer := invoice.NewRenderer(invoice.ShopInfo{Name: "Test Kirana"})

	catalogService := services.NewCatalogService(catalogRepo, slogger)
	salesService := services.NewSalesService(salesRepo, slogger)
	reportService := services.NewReportService(salesRepo, catalogRepo, slogger)
	checkoutService := services.NewCheckoutService(
		catalogRepo, salesRepo, sessions, s.testDB.Database,
		renderer, s.artifacts, nopEnqueuer{}, slogger,
	)

	authHandler := handlers.NewAuthHandler(testUnlockPassword, time.Hour, slogger)
	catalogHandler := handlers.NewCatalogHandler(catalogService, slogger)
	cartHandler := handlers.NewCartHandler(sessions, catalogService, slogger)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, cache, slogger)
	salesHandler := handlers.NewSalesHandler(salesService, cache, slogger)
	invoiceHandler := handlers.NewInvoiceHandler(salesService, renderer, s.artifacts, slogger)
	dashboardHandler := handlers.NewDashboardHandler(reportService, cache, slogger)
	reportHandler := handlers.NewReportHandler(reportService, cache, slogger)
	exportHandler := handlers.NewExportHandler(salesService, catalogService, cache, slogger)
	healthHandler := handlers.NewHealthHandler(s.testDB.Database, s.testRedis.Client, nil, &config.Config{
		App: config.AppConfig{Version: "test", Environment: "test"},
	}, slogger)

	apiV1 := "/api/v1"
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Readiness)
	mux.HandleFunc("POST "+apiV1+"/unlock", authHandler.Unlock)

	locked := http.NewServeMux()
	locked.HandleFunc("POST "+apiV1+"/lock", authHandler.Lock)
	locked.HandleFunc("GET "+apiV1+"/products", catalogHandler.ListProducts)
	locked.HandleFunc("POST "+apiV1+"/products", catalogHandler.CreateProduct)
	locked.HandleFunc("GET "+apiV1+"/products/low-stock", catalogHandler.LowStock)
	locked.HandleFunc("GET "+apiV1+"/products/barcode/{barcode}", catalogHandler.GetProductByBarcode)
	locked.HandleFunc("GET "+apiV1+"/products/{id}", catalogHandler.GetProduct)
	locked.HandleFunc("PUT "+apiV1+"/products/{id}", catalogHandler.UpdateProduct)
	locked.HandleFunc("DELETE "+apiV1+"/products/{id}", catalogHandler.DeleteProduct)
	locked.HandleFunc("POST "+apiV1+"/products/{id}/stock", catalogHandler.AdjustStock)
	locked.HandleFunc("POST "+apiV1+"/carts", cartHandler.CreateCart)
	locked.HandleFunc("GET "+apiV1+"/carts/{id}", cartHandler.GetCart)
	locked.HandleFunc("DELETE "+apiV1+"/carts/{id}", cartHandler.DeleteCart)
	locked.HandleFunc("POST "+apiV1+"/carts/{id}/lines", cartHandler.AddLine)
	locked.HandleFunc("PUT "+apiV1+"/carts/{id}/lines/{index}", cartHandler.UpdateLine)
	locked.HandleFunc("DELETE "+apiV1+"/carts/{id}/lines/{index}", cartHandler.RemoveLine)
	locked.HandleFunc("POST "+apiV1+"/carts/{id}/clear", cartHandler.ClearCart)
	locked.HandleFunc("POST "+apiV1+"/carts/{id}/checkout", checkoutHandler.Checkout)
	locked.HandleFunc("GET "+apiV1+"/sales", salesHandler.ListSales)
	locked.HandleFunc("GET "+apiV1+"/sales/recent", salesHandler.RecentSales)
	locked.HandleFunc("GET "+apiV1+"/sales/{id}", salesHandler.GetSale)
	locked.HandleFunc("DELETE "+apiV1+"/sales/{id}", salesHandler.DeleteSale)
	locked.HandleFunc("GET "+apiV1+"/sales/{id}/invoice", invoiceHandler.GetInvoice)
	locked.HandleFunc("GET "+apiV1+"/dashboard", dashboardHandler.GetDashboard)
	locked.HandleFunc("GET "+apiV1+"/reports/sales", reportHandler.SalesReport)
	locked.HandleFunc("GET "+apiV1+"/export/sales/csv", exportHandler.ExportSalesCSV)
	locked.HandleFunc("GET "+apiV1+"/export/products/csv", exportHandler.ExportProductsCSV)
	locked.HandleFunc("GET "+apiV1+"/export/products/excel", exportHandler.ExportProductsExcel)

	mux.Handle("/", middleware.RequireToken(authHandler.Validate)(locked))

	return httptest.NewServer(middleware.Recovery(slogger)(mux))
}

func (s *POSWorkflowSuite) TestUnlockWorkflow() {
	// Locked shop rejects API calls
	resp := s.makeRequest("GET", "/products", nil, "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Wrong password is rejected
	resp = s.makeRequest("POST", "/unlock", map[string]interface{}{"password": "wrong"}, "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Correct password yields a token
	resp = s.makeRequest("POST", "/unlock", map[string]interface{}{"password": testUnlockPassword}, "")
	s.Equal(http.StatusOK, resp.StatusCode)

	var unlock map[string]interface{}
	s.decodeResponse(resp, &unlock)
	token := unlock["token"].(string)
	s.NotEmpty(token)

	// The token opens the shop
	resp = s.makeRequest("GET", "/products", nil, token)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Lock revokes it
	resp = s.makeRequest("POST", "/lock", nil, token)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("GET", "/products", nil, token)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func (s *POSWorkflowSuite) TestCompleteSaleWorkflow() {
	token := s.unlock()

	// 1. Create a product with 10 units on hand
	createReq := map[string]interface{}{
		"barcode":    "8901030865278",
		"name":       "Sunflower Oil 1L",
		"category":   "Grocery",
		"cost_price": "130.00",
		"sale_price": "152.00",
		"stock":      "10",
	}

	resp := s.makeRequest("POST", "/products", createReq, token)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var product map[string]interface{}
	s.decodeResponse(resp, &product)
	productID := product["id"].(string)
	s.NotEmpty(productID)

	// 2. Scan it by barcode
	resp = s.makeRequest("GET", "/products/barcode/8901030865278", nil, token)
	s.Equal(http.StatusOK, resp.StatusCode)

	var scanned map[string]interface{}
	s.decodeResponse(resp, &scanned)
	s.Equal("Sunflower Oil 1L", scanned["name"])

	// 3. Open a cart and ring the product up twice
	resp = s.makeRequest("POST", "/carts", nil, token)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var cart map[string]interface{}
	s.decodeResponse(resp, &cart)
	cartID := cart["session_id"].(string)
	s.NotEmpty(cartID)

	for _, qty := range []string{"2", "3"} {
		resp = s.makeRequest("POST", fmt.Sprintf("/carts/%s/lines", cartID), map[string]interface{}{
			"barcode": "8901030865278",
			"qty":     qty,
		}, token)
		s.Equal(http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	// 4. Checkout with a 10% discount
	resp = s.makeRequest("POST", fmt.Sprintf("/carts/%s/checkout", cartID), map[string]interface{}{
		"discount_percent": "10",
		"payment_method":   "Cash",
		"customer":         "Walk-in",
	}, token)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var checkout map[string]interface{}
	s.decodeResponse(resp, &checkout)
	sale := checkout["sale"].(map[string]interface{})
	saleID := sale["id"].(string)

	// 5 units at 152.00 less 10%
	s.Equal("760", sale["subtotal"])
	s.Equal("684", sale["total"])

	// 5. Stock dropped by the summed quantity
	resp = s.makeRequest("GET", fmt.Sprintf("/products/%s", productID), nil, token)
	s.Equal(http.StatusOK, resp.StatusCode)

	var after map[string]interface{}
	s.decodeResponse(resp, &after)
	s.Equal("5", after["stock"])

	// 6. The invoice artifact is served
	resp = s.makeRequest("GET", fmt.Sprintf("/sales/%s/invoice?format=csv", saleID), nil, token)
	s.Equal(http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	s.NoError(err)
	s.Contains(string(body), "Sunflower Oil 1L")

	// 7. The sale shows in the recent feed
	resp = s.makeRequest("GET", "/sales/recent?limit=5", nil, token)
	s.Equal(http.StatusOK, resp.StatusCode)

	var recent map[string]interface{}
	s.decodeResponse(resp, &recent)
	sales := recent["sales"].([]interface{})
	s.GreaterOrEqual(len(sales), 1)

	// 8. Deleting the sale does not restore stock
	resp = s.makeRequest("DELETE", fmt.Sprintf("/sales/%s", saleID), nil, token)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.makeRequest("GET", fmt.Sprintf("/products/%s", productID), nil, token)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decodeResponse(resp, &after)
	s.Equal("5", after["stock"])
}

func (s *POSWorkflowSuite) TestCheckoutOversellRejected() {
	token := s.unlock()

	// Product with only 4 units on hand
	resp := s.makeRequest("POST", "/products", map[string]interface{}{
		"barcode":    "8901725133405",
		"name":       "Wheat Flour 5kg",
		"category":   "Grains",
		"cost_price": "210.00",
		"sale_price": "245.00",
		"stock":      "4",
	}, token)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var product map[string]interface{}
	s.decodeResponse(resp, &product)
	productID := product["id"].(string)

	// Two lines of the same product that only oversell when summed
	resp = s.makeRequest("POST", "/carts", nil, token)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var cart map[string]interface{}
	s.decodeResponse(resp, &cart)
	cartID := cart["session_id"].(string)

	for _, qty := range []string{"2", "3"} {
		resp = s.makeRequest("POST", fmt.Sprintf("/carts/%s/lines", cartID), map[string]interface{}{
			"barcode": "8901725133405",
			"qty":     qty,
		}, token)
		s.Equal(http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp = s.makeRequest("POST", fmt.Sprintf("/carts/%s/checkout", cartID), map[string]interface{}{
		"payment_method": "Cash",
	}, token)
	s.Equal(http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Nothing committed: stock is untouched and the cart survives
	resp = s.makeRequest("GET", fmt.Sprintf("/products/%s", productID), nil, token)
	s.Equal(http.StatusOK, resp.StatusCode)

	var after map[string]interface{}
	s.decodeResponse(resp, &after)
	s.Equal("4", after["stock"])

	resp = s.makeRequest("GET", fmt.Sprintf("/carts/%s", cartID), nil, token)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (s *POSWorkflowSuite) TestCheckoutEmptyCart() {
	token := s.unlock()

	resp := s.makeRequest("POST", "/carts", nil, token)
	s.Equal(http.StatusCreated, resp.StatusCode)

	var cart map[string]interface{}
	s.decodeResponse(resp, &cart)
	cartID := cart["session_id"].(string)

	resp = s.makeRequest("POST", fmt.Sprintf("/carts/%s/checkout", cartID), map[string]interface{}{
		"payment_method": "Cash",
	}, token)
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func (s *POSWorkflowSuite) TestHealthEndpoints() {
	resp, err := s.client.Get(s.server.URL + "/health")
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	var report map[string]interface{}
	s.decodeResponse(resp, &report)
	s.Equal("ok", report["status"])

	checks, ok := report["checks"].([]interface{})
	s.Require().True(ok)
	s.Require().Len(checks, 2)
	names := []string{}
	for _, c := range checks {
		check := c.(map[string]interface{})
		s.Equal("up", check["status"])
		names = append(names, check["name"].(string))
	}
	s.Equal([]string{"database", "redis"}, names)

	resp, err = s.client.Get(s.server.URL + "/ready")
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	var ready map[string]interface{}
	s.decodeResponse(resp, &ready)
	s.Equal(true, ready["ready"])
}

func (s *POSWorkflowSuite) unlock() string {
	if s.token != "" {
		return s.token
	}

	resp := s.makeRequest("POST", "/unlock", map[string]interface{}{"password": testUnlockPassword}, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var unlock map[string]interface{}
	s.decodeResponse(resp, &unlock)
	s.token = unlock["token"].(string)
	return s.token
}

func (s *POSWorkflowSuite) makeRequest(method, path string, body interface{}, token string) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reqBody)
	s.Require().NoError(err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("X-Shop-Token", token)
	}

	resp, err := s.client.Do(req)
	s.Require().NoError(err)

	return resp
}

func (s *POSWorkflowSuite) decodeResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	s.Require().NoError(err)
}

func TestPOSWorkflowSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(POSWorkflowSuite))
}
