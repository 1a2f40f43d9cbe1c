// internal/handlers/catalog_handler_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
	"github.com/ammerola/kirana-be/internal/handlers"
	"github.com/ammerola/kirana-be/test/helpers"
	"github.com/ammerola/kirana-be/test/mocks"
)

func TestCatalogHandler_GetProduct(t *testing.T) {
	testProduct := helpers.CreateTestProduct()

	tests := []struct {
		name           string
		productID      string
		setupMocks     func(*mocks.MockCatalogService)
		expectedStatus int
		validateBody   func(*testing.T, []byte)
	}{
		{
			name:      "successfully_retrieves_product",
			productID: testProduct.ID.String(),
			setupMocks: func(m *mocks.MockCatalogService) {
				m.EXPECT().
					GetByID(gomock.Any(), testProduct.ID).
					Return(testProduct, nil)
			},
			expectedStatus: http.StatusOK,
			validateBody: func(t *testing.T, body []byte) {
				var response domain.Product
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, testProduct.ID, response.ID)
				assert.Equal(t, testProduct.Name, response.Name)
			},
		},
		{
			name:           "invalid_uuid_format",
			productID:      "not-a-uuid",
			setupMocks:     func(m *mocks.MockCatalogService) {},
			expectedStatus: http.StatusBadRequest,
			validateBody: func(t *testing.T, body []byte) {
				var response map[string]string
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, "Invalid product ID format", response["error"])
			},
		},
		{
			name:      "product_not_found",
			productID: uuid.New().String(),
			setupMocks: func(m *mocks.MockCatalogService) {
				m.EXPECT().
					GetByID(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrProductNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:      "service_error",
			productID: testProduct.ID.String(),
			setupMocks: func(m *mocks.MockCatalogService) {
				m.EXPECT().
					GetByID(gomock.Any(), testProduct.ID).
					Return(nil, errors.New("database connection failed"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockCatalogService(ctrl)
			handler := handlers.NewCatalogHandler(mockService, helpers.TestLogger())

			tt.setupMocks(mockService)

			req := httptest.NewRequest("GET", "/api/v1/products/"+tt.productID, nil)
			req.SetPathValue("id", tt.productID)
			w := httptest.NewRecorder()

			handler.GetProduct(w, req)

			resp := w.Result()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.validateBody != nil {
				tt.validateBody(t, w.Body.Bytes())
			}
		})
	}
}

func TestCatalogHandler_GetProductByBarcode(t *testing.T) {
	testProduct := helpers.CreateTestProduct()

	t.Run("finds_by_barcode", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockService := mocks.NewMockCatalogService(ctrl)
		handler := handlers.NewCatalogHandler(mockService, helpers.TestLogger())

		mockService.EXPECT().
			FindByBarcode(gomock.Any(), testProduct.Barcode).
			Return(testProduct, nil)

		req := httptest.NewRequest("GET", "/api/v1/products/barcode/"+testProduct.Barcode, nil)
		req.SetPathValue("barcode", testProduct.Barcode)
		w := httptest.NewRecorder()

		handler.GetProductByBarcode(w, req)

		assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	})

	t.Run("unknown_barcode_is_not_found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockService := mocks.NewMockCatalogService(ctrl)
		handler := handlers.NewCatalogHandler(mockService, helpers.TestLogger())

		mockService.EXPECT().
			FindByBarcode(gomock.Any(), "0000000000000").
			Return(nil, domain.ErrProductNotFound)

		req := httptest.NewRequest("GET", "/api/v1/products/barcode/0000000000000", nil)
		req.SetPathValue("barcode", "0000000000000")
		w := httptest.NewRecorder()

		handler.GetProductByBarcode(w, req)

		assert.Equal(t, http.StatusNotFound, w.Result().StatusCode)
	})
}

func TestCatalogHandler_CreateProduct(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(*mocks.MockCatalogService)
		expectedStatus int
	}{
		{
			name: "creates_valid_product",
			body: `{"barcode": "8901030865278", "name": "Sunflower Oil 1L", "category": "Grocery", "cost_price": "130.00", "sale_price": "152.00", "stock": "10"}`,
			setupMocks: func(m *mocks.MockCatalogService) {
				m.EXPECT().
					SaveProduct(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *domain.Product) error {
						assert.Equal(t, "Sunflower Oil 1L", p.Name)
						assert.True(t, p.SalePrice.Equal(decimal.NewFromInt(152)))
						return nil
					})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "rejects_missing_name",
			body:           `{"sale_price": "152.00"}`,
			setupMocks:     func(m *mocks.MockCatalogService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "rejects_negative_stock",
			body:           `{"name": "Bad Stock", "stock": "-2"}`,
			setupMocks:     func(m *mocks.MockCatalogService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "rejects_malformed_body",
			body:           `{not json`,
			setupMocks:     func(m *mocks.MockCatalogService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockCatalogService(ctrl)
			handler := handlers.NewCatalogHandler(mockService, helpers.TestLogger())

			tt.setupMocks(mockService)

			req := httptest.NewRequest("POST", "/api/v1/products",
				bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()

			handler.CreateProduct(w, req)

			assert.Equal(t, tt.expectedStatus, w.Result().StatusCode)
		})
	}
}

func TestCatalogHandler_AdjustStock(t *testing.T) {
	testProduct := helpers.CreateTestProduct()

	tests := []struct {
		name           string
		body           string
		setupMocks     func(*mocks.MockCatalogService)
		expectedStatus int
	}{
		{
			name: "applies_positive_delta",
			body: `{"delta": "5"}`,
			setupMocks: func(m *mocks.MockCatalogService) {
				m.EXPECT().
					AdjustStock(gomock.Any(), testProduct.ID, decimal.NewFromInt(5)).
					Return(testProduct, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "rejects_zero_delta",
			body:           `{"delta": "0"}`,
			setupMocks:     func(m *mocks.MockCatalogService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "negative_balance_is_conflict",
			body: `{"delta": "-100"}`,
			setupMocks: func(m *mocks.MockCatalogService) {
				m.EXPECT().
					AdjustStock(gomock.Any(), testProduct.ID, gomock.Any()).
					Return(nil, domain.ErrInsufficientStock)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockCatalogService(ctrl)
			handler := handlers.NewCatalogHandler(mockService, helpers.TestLogger())

			tt.setupMocks(mockService)

			req := httptest.NewRequest("POST", "/api/v1/products/"+testProduct.ID.String()+"/stock",
				bytes.NewReader([]byte(tt.body)))
			req.SetPathValue("id", testProduct.ID.String())
			w := httptest.NewRecorder()

			handler.AdjustStock(w, req)

			assert.Equal(t, tt.expectedStatus, w.Result().StatusCode)
		})
	}
}

func TestCatalogHandler_ListProducts_ParsesQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockCatalogService(ctrl)
	handler := handlers.NewCatalogHandler(mockService, helpers.TestLogger())

	mockService.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params ports.ProductListParams) (*ports.ProductListResult, error) {
			assert.Equal(t, 2, params.Page)
			assert.Equal(t, 25, params.PageSize)
			assert.Equal(t, "rice", params.Search)
			assert.Equal(t, "Grains", params.Category)
			return &ports.ProductListResult{Products: []*domain.Product{}, Page: 2, PageSize: 25}, nil
		})

	req := httptest.NewRequest("GET", "/api/v1/products?page=2&limit=25&search=rice&category=Grains", nil)
	w := httptest.NewRecorder()

	handler.ListProducts(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestCatalogHandler_ListProducts_CapsPageSize(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := mocks.NewMockCatalogService(ctrl)
	handler := handlers.NewCatalogHandler(mockService, helpers.TestLogger())

	mockService.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params ports.ProductListParams) (*ports.ProductListResult, error) {
			assert.Equal(t, 200, params.PageSize)
			return &ports.ProductListResult{}, nil
		})

	req := httptest.NewRequest("GET", "/api/v1/products?limit=5000", nil)
	w := httptest.NewRecorder()

	handler.ListProducts(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}
