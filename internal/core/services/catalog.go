// internal/core/services/catalog.go
package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
)

// DefaultLowStockThreshold flags products running out when no
// threshold is given.
var DefaultLowStockThreshold = decimal.NewFromInt(5)

// CatalogService handles product catalog business logic
type CatalogService struct {
	repo   ports.CatalogRepository
	logger *slog.Logger
}

var _ ports.CatalogService = (*CatalogService)(nil)

// NewCatalogService creates a new catalog service
func NewCatalogService(repo ports.CatalogRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		logger: logger.With(slog.String("service", "catalog")),
	}
}

// SaveProduct validates and stores a new product
func (s *CatalogService) SaveProduct(ctx context.Context, p *domain.Product) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	p.PrepareForStorage()

	if err := s.repo.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	s.logger.InfoContext(ctx, "product saved",
		slog.String("id", p.ID.String()),
		slog.String("name", p.Name))

	return nil
}

// GetByID retrieves a product by ID
func (s *CatalogService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return nil, domain.ProductNotFoundError(id)
	}
	return p, nil
}

// FindByBarcode retrieves a product by its barcode
func (s *CatalogService) FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("barcode is required")
	}

	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("failed to find product by barcode: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: barcode %s", domain.ErrProductNotFound, barcode)
	}
	return p, nil
}

// UpdateProduct updates an existing product
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, p *domain.Product) error {
	p.ID = id

	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("id", id.String()))

	return nil
}

// DeleteProduct removes a product from the catalog. Sales already in
// the ledger keep their snapshots.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("id", id.String()))

	return nil
}

// AdjustStock applies a signed stock correction
func (s *CatalogService) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*domain.Product, error) {
	if delta.IsZero() {
		return nil, fmt.Errorf("stock adjustment cannot be zero")
	}

	p, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// List retrieves products with filtering and pagination. A read
// failure degrades to an empty page so the terminal keeps working.
func (s *CatalogService) List(ctx context.Context, params ports.ProductListParams) (*ports.ProductListResult, error) {
	result, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog list failed, returning empty page", "err", err)
		return &ports.ProductListResult{
			Products: []*domain.Product{},
			Page:     params.Page,
			PageSize: params.PageSize,
		}, nil
	}
	return result, nil
}

// LowStock returns products at or below the threshold
func (s *CatalogService) LowStock(ctx context.Context, threshold decimal.Decimal) ([]domain.Product, error) {
	if threshold.IsZero() || threshold.IsNegative() {
		threshold = DefaultLowStockThreshold
	}

	products, err := s.repo.LowStock(ctx, threshold)
	if err != nil {
		s.logger.WarnContext(ctx, "low stock query failed, returning empty list", "err", err)
		return []domain.Product{}, nil
	}
	return products, nil
}

// ImportCSV reads products from a CSV stream and upserts them by
// barcode. Expected columns: barcode, name, category, cost_price,
// sale_price, stock. The first row is treated as a header when it
// does not parse as data.
func (s *CatalogService) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var products []domain.Product
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("csv read at line %d: %w", line+1, err)
		}
		line++

		if len(record) < 6 {
			return 0, fmt.Errorf("csv line %d: expected 6 columns, got %d", line, len(record))
		}

		costPrice, costErr := decimal.NewFromString(strings.TrimSpace(record[3]))
		salePrice, saleErr := decimal.NewFromString(strings.TrimSpace(record[4]))
		stock, stockErr := decimal.NewFromString(strings.TrimSpace(record[5]))

		if line == 1 && (costErr != nil || saleErr != nil || stockErr != nil) {
			// Header row.
			continue
		}
		if costErr != nil || saleErr != nil || stockErr != nil {
			return 0, fmt.Errorf("csv line %d: bad numeric value", line)
		}

		p := domain.Product{
			Barcode:   strings.TrimSpace(record[0]),
			Name:      strings.TrimSpace(record[1]),
			Category:  strings.TrimSpace(record[2]),
			CostPrice: costPrice,
			SalePrice: salePrice,
			Stock:     stock,
		}
		if err := p.Validate(); err != nil {
			return 0, fmt.Errorf("csv line %d: %w", line, err)
		}
		p.PrepareForStorage()
		products = append(products, p)
	}

	if len(products) == 0 {
		return 0, nil
	}

	if err := s.repo.SaveBatch(ctx, products); err != nil {
		return 0, fmt.Errorf("failed to import products: %w", err)
	}

	s.logger.InfoContext(ctx, "catalog imported",
		slog.Int("count", len(products)))

	return len(products), nil
}
