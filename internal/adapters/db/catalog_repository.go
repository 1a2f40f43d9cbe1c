// internal/adapters/db/catalog_repository.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
)

// catalogRepository implements ports.CatalogRepository
type catalogRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *Database, logger *slog.Logger) ports.CatalogRepository {
	return &catalogRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "catalog")),
	}
}

const productColumns = `
	id, barcode, name, category, cost_price, sale_price, stock,
	created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	p := &domain.Product{}
	var barcode sql.NullString

	err := row.Scan(
		&p.ID, &barcode, &p.Name, &p.Category,
		&p.CostPrice, &p.SalePrice, &p.Stock,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Barcode = barcode.String
	return p, nil
}

// nullableBarcode maps the empty string to NULL so the partial unique
// index on barcode ignores products without one.
func nullableBarcode(barcode string) interface{} {
	if barcode == "" {
		return nil
	}
	return barcode
}

// Save creates a new product
func (r *catalogRepository) Save(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (
			id, barcode, name, category, cost_price, sale_price, stock,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.ID, nullableBarcode(p.Barcode), p.Name, p.Category,
		p.CostPrice, p.SalePrice, p.Stock,
		p.CreatedAt, p.UpdatedAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	r.logger.DebugContext(ctx, "product saved",
		slog.String("id", p.ID.String()),
		slog.String("name", p.Name))

	return nil
}

// SaveBatch upserts multiple products in one transaction, matching on
// barcode so a re-run of the seeder refreshes prices instead of
// duplicating rows.
func (r *catalogRepository) SaveBatch(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}

		query := `
			INSERT INTO products (
				id, barcode, name, category, cost_price, sale_price, stock,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (barcode) WHERE barcode IS NOT NULL DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				cost_price = EXCLUDED.cost_price,
				sale_price = EXCLUDED.sale_price,
				stock = EXCLUDED.stock,
				updated_at = EXCLUDED.updated_at`

		for i := range products {
			batch.Queue(query,
				products[i].ID, nullableBarcode(products[i].Barcode),
				products[i].Name, products[i].Category,
				products[i].CostPrice, products[i].SalePrice, products[i].Stock,
				products[i].CreatedAt, products[i].UpdatedAt,
			)
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()

		for i := range products {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("failed to save product %d: %w", i, err)
			}
		}

		return nil
	})
}

// Update updates an existing product. Sale snapshots already written
// keep their old name and price.
func (r *catalogRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products SET
			barcode = $2, name = $3, category = $4,
			cost_price = $5, sale_price = $6, stock = $7, updated_at = $8
		WHERE id = $1
		RETURNING updated_at`

	p.UpdatedAt = time.Now()

	err := r.db.QueryRow(ctx, query,
		p.ID, nullableBarcode(p.Barcode), p.Name, p.Category,
		p.CostPrice, p.SalePrice, p.Stock, p.UpdatedAt,
	).Scan(&p.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ProductNotFoundError(p.ID)
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	r.logger.DebugContext(ctx, "product updated",
		slog.String("id", p.ID.String()))

	return nil
}

// FindByID retrieves a product by ID
func (r *catalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	return p, nil
}

// FindByBarcode retrieves a product by its barcode
func (r *catalogRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE barcode = $1`

	p, err := scanProduct(r.db.QueryRow(ctx, query, barcode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product by barcode: %w", err)
	}

	return p, nil
}

// Delete removes a product from the catalog. The sales ledger keeps
// its snapshots.
func (r *catalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ProductNotFoundError(id)
	}

	r.logger.InfoContext(ctx, "product deleted",
		slog.String("id", id.String()))

	return nil
}

// List retrieves products with filtering and pagination
func (r *catalogRepository) List(ctx context.Context, params ports.ProductListParams) (*ports.ProductListResult, error) {
	qb := squirrel.Select(
		"id", "barcode", "name", "category",
		"cost_price", "sale_price", "stock",
		"created_at", "updated_at",
	).From("products").
		PlaceholderFormat(squirrel.Dollar)

	if params.Search != "" {
		qb = qb.Where(squirrel.Or{
			squirrel.ILike{"name": "%" + params.Search + "%"},
			squirrel.Eq{"barcode": params.Search},
		})
	}
	if params.Category != "" {
		qb = qb.Where(squirrel.Eq{"category": params.Category})
	}

	countQb := qb.Column("COUNT(*) OVER()").Limit(1)
	countSQL, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	row := r.db.QueryRow(ctx, countSQL, countArgs...)
	p := &domain.Product{}
	var barcode sql.NullString
	err = row.Scan(
		&p.ID, &barcode, &p.Name, &p.Category,
		&p.CostPrice, &p.SalePrice, &p.Stock,
		&p.CreatedAt, &p.UpdatedAt, &totalCount,
	)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	orderBy := "name ASC"
	if params.SortBy != "" {
		direction := "ASC"
		if params.SortOrder == "desc" {
			direction = "DESC"
		}

		switch params.SortBy {
		case "stock":
			orderBy = fmt.Sprintf("stock %s", direction)
		case "price":
			orderBy = fmt.Sprintf("sale_price %s", direction)
		case "category":
			orderBy = fmt.Sprintf("category %s, name ASC", direction)
		case "updated":
			orderBy = fmt.Sprintf("updated_at %s", direction)
		default:
			orderBy = fmt.Sprintf("name %s", direction)
		}
	}
	qb = qb.OrderBy(orderBy)

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	qb = qb.Limit(uint64(pageSize)).Offset(uint64((page - 1) * pageSize))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := ScanMany(rows, func(rows pgx.Rows) (*domain.Product, error) {
		return scanProduct(rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))

	return &ports.ProductListResult{
		Products:   products,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// LowStock returns products at or below the given stock threshold
func (r *catalogRepository) LowStock(ctx context.Context, threshold decimal.Decimal) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE stock <= $1
		ORDER BY stock ASC, name ASC`

	rows, err := r.db.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock: %w", err)
	}

	ptrs, err := ScanMany(rows, func(rows pgx.Rows) (*domain.Product, error) {
		return scanProduct(rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan low stock products: %w", err)
	}

	products := make([]domain.Product, 0, len(ptrs))
	for _, p := range ptrs {
		products = append(products, *p)
	}
	return products, nil
}

// AdjustStock applies a signed stock correction and returns the
// updated product. The CHECK constraint on stock rejects adjustments
// that would go negative.
func (r *catalogRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*domain.Product, error) {
	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	p, err := scanProduct(r.db.QueryRow(ctx, query, id, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ProductNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	r.logger.InfoContext(ctx, "stock adjusted",
		slog.String("id", id.String()),
		slog.String("delta", delta.String()),
		slog.String("stock", p.Stock.String()))

	return p, nil
}

// Count returns the total number of products
func (r *catalogRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// Stats returns catalog-wide aggregates for the dashboard
func (r *catalogRepository) Stats(ctx context.Context, lowStockThreshold decimal.Decimal) (*ports.CatalogStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(stock * cost_price), 0),
			COUNT(*) FILTER (WHERE stock <= $1)
		FROM products`

	stats := &ports.CatalogStats{}
	err := r.db.QueryRow(ctx, query, lowStockThreshold).Scan(
		&stats.ProductCount, &stats.StockValue, &stats.LowStockCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog stats: %w", err)
	}

	return stats, nil
}

// LockForUpdate loads the given products on the caller's transaction
// with row locks held until it ends. IDs are locked in sorted order so
// two concurrent checkouts can never deadlock on each other.
func (r *catalogRepository) LockForUpdate(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*domain.Product{}, nil
	}

	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	query := `SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`

	rows, err := tx.Query(ctx, query, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}

	ptrs, err := ScanMany(rows, func(rows pgx.Rows) (*domain.Product, error) {
		return scanProduct(rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan locked products: %w", err)
	}

	locked := make(map[uuid.UUID]*domain.Product, len(ptrs))
	for _, p := range ptrs {
		locked[p.ID] = p
	}
	return locked, nil
}

// DeductStock subtracts qty from a product's stock on the caller's
// transaction. Callers validate availability first; the guard in the
// WHERE clause is the backstop against oversell.
func (r *catalogRepository) DeductStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty decimal.Decimal) error {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2`

	tag, err := tx.Exec(ctx, query, id, qty)
	if err != nil {
		return fmt.Errorf("failed to deduct stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stock deduction rejected for product %s", id)
	}

	return nil
}
