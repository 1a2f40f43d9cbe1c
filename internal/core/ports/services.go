// internal/core/ports/services.go
package ports

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/kirana-be/internal/core/domain"
)

// CatalogService defines the application service port for the catalog.
type CatalogService interface {
	SaveProduct(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, p *domain.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*domain.Product, error)
	List(ctx context.Context, params ProductListParams) (*ProductListResult, error)
	LowStock(ctx context.Context, threshold decimal.Decimal) ([]domain.Product, error)
	ImportCSV(ctx context.Context, r io.Reader) (int, error)
}

// CheckoutParams carries everything the coordinator needs to close a
// cart into a sale.
type CheckoutParams struct {
	SessionID       string
	DiscountPercent decimal.Decimal
	PaymentMethod   domain.PaymentMethod
	Customer        string
	Notes           string
}

// CheckoutResult is the committed sale plus the state of its invoice
// artifacts. RenderErr is set when artifact generation failed after
// the sale already committed.
type CheckoutResult struct {
	Sale      *domain.Sale
	RenderErr error
}

// CheckoutService is the checkout coordinator port.
type CheckoutService interface {
	Checkout(ctx context.Context, params CheckoutParams) (*CheckoutResult, error)
}

// SalesService defines the application service port for the ledger.
type SalesService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	List(ctx context.Context, params SaleListParams) (*SaleListResult, error)
	Recent(ctx context.Context, limit int) ([]domain.Sale, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DashboardData is the landing-page summary
type DashboardData struct {
	TodayRevenue   decimal.Decimal `json:"today_revenue"`
	TodaySaleCount int64           `json:"today_sale_count"`
	ProductCount   int64           `json:"product_count"`
	StockValue     decimal.Decimal `json:"stock_value"`
	LowStockCount  int64           `json:"low_stock_count"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// SalesReport aggregates the ledger over a date range
type SalesReport struct {
	From             time.Time            `json:"from"`
	To               time.Time            `json:"to"`
	Summary          SalesSummary         `json:"summary"`
	PaymentBreakdown []PaymentMethodTotal `json:"payment_breakdown"`
}

// ProductStat ranks a product by sold quantity and revenue
type ProductStat struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// CategoryRevenue is revenue attributed to a catalog category
type CategoryRevenue struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// ReportService defines the reporting and dashboard port.
type ReportService interface {
	Dashboard(ctx context.Context) (*DashboardData, error)
	SalesReport(ctx context.Context, from, to time.Time) (*SalesReport, error)
	TimeSeries(ctx context.Context, from, to time.Time) ([]DailyRevenue, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductStat, error)
	CategoryRevenue(ctx context.Context, from, to time.Time) ([]CategoryRevenue, error)
}
