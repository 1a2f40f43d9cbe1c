// internal/core/ports/catalog_repository.go
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/kirana-be/internal/core/domain"
)

// CatalogRepository defines the persistence port for the product
// catalog. Implemented by the database adapter.
type CatalogRepository interface {
	Save(ctx context.Context, p *domain.Product) error
	SaveBatch(ctx context.Context, products []domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params ProductListParams) (*ProductListResult, error)
	LowStock(ctx context.Context, threshold decimal.Decimal) ([]domain.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*domain.Product, error)
	Count(ctx context.Context) (int64, error)
	Stats(ctx context.Context, lowStockThreshold decimal.Decimal) (*CatalogStats, error)

	// Checkout-phase operations. Both run on the caller's transaction
	// so locks are held until the sale commits.
	LockForUpdate(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error)
	DeductStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty decimal.Decimal) error
}

// ProductListParams holds parameters for listing the catalog
type ProductListParams struct {
	Search    string
	Category  string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// ProductListResult holds one page of catalog results
type ProductListResult struct {
	Products   []*domain.Product `json:"products"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalCount int64             `json:"total_count"`
	TotalPages int               `json:"total_pages"`
}

// CatalogStats holds catalog-wide aggregates for the dashboard
type CatalogStats struct {
	ProductCount  int64           `json:"product_count"`
	StockValue    decimal.Decimal `json:"stock_value"`
	LowStockCount int64           `json:"low_stock_count"`
}
