// internal/adapters/db/sales_repository.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
)

// salesRepository implements ports.SalesRepository
type salesRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewSalesRepository creates a new sales ledger repository
func NewSalesRepository(db *Database, logger *slog.Logger) ports.SalesRepository {
	return &salesRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "sales")),
	}
}

const saleColumns = `
	id, sale_number, sold_at, subtotal, discount_percent, discount_amount,
	total, items, payment_method, customer, notes, created_at`

func scanSale(row pgx.Row) (*domain.Sale, error) {
	s := &domain.Sale{}
	var itemsRaw []byte
	var customer, notes sql.NullString

	err := row.Scan(
		&s.ID, &s.SaleNumber, &s.SoldAt,
		&s.Subtotal, &s.DiscountPercent, &s.DiscountAmount, &s.Total,
		&itemsRaw, &s.PaymentMethod, &customer, &notes, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Customer = customer.String
	s.Notes = notes.String

	items, err := domain.DecodeItems(itemsRaw)
	if err != nil {
		return nil, err
	}
	s.Items = items

	return s, nil
}

// Insert writes a sale on the caller's transaction. The sale number
// comes from a sequence so invoices stay human-readable.
func (r *salesRepository) Insert(ctx context.Context, tx pgx.Tx, sale *domain.Sale) error {
	itemsRaw, err := domain.EncodeItems(sale.Items)
	if err != nil {
		return fmt.Errorf("failed to encode sale items: %w", err)
	}

	query := `
		INSERT INTO sales (
			id, sold_at, subtotal, discount_percent, discount_amount,
			total, items, payment_method, customer, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING sale_number, created_at`

	err = tx.QueryRow(ctx, query,
		sale.ID, sale.SoldAt,
		sale.Subtotal, sale.DiscountPercent, sale.DiscountAmount, sale.Total,
		itemsRaw, sale.PaymentMethod, sale.Customer, sale.Notes, sale.CreatedAt,
	).Scan(&sale.SaleNumber, &sale.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	r.logger.InfoContext(ctx, "sale recorded",
		slog.String("id", sale.ID.String()),
		slog.Int64("sale_number", sale.SaleNumber),
		slog.String("total", sale.Total.String()))

	return nil
}

// FindByID retrieves a sale by ID
func (r *salesRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`

	s, err := scanSale(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}

	return s, nil
}

// List retrieves ledger entries newest first with filtering and pagination
func (r *salesRepository) List(ctx context.Context, params ports.SaleListParams) (*ports.SaleListResult, error) {
	qb := squirrel.Select(
		"id", "sale_number", "sold_at",
		"subtotal", "discount_percent", "discount_amount", "total",
		"items", "payment_method", "customer", "notes", "created_at",
	).From("sales").
		PlaceholderFormat(squirrel.Dollar)

	if !params.From.IsZero() {
		qb = qb.Where(squirrel.GtOrEq{"sold_at": params.From})
	}
	if !params.To.IsZero() {
		qb = qb.Where(squirrel.Lt{"sold_at": params.To})
	}
	if params.PaymentMethod != "" {
		qb = qb.Where(squirrel.Eq{"payment_method": params.PaymentMethod})
	}
	if params.Customer != "" {
		qb = qb.Where(squirrel.ILike{"customer": "%" + params.Customer + "%"})
	}

	countQb := squirrel.Select("COUNT(*)").From("sales").
		PlaceholderFormat(squirrel.Dollar)
	if !params.From.IsZero() {
		countQb = countQb.Where(squirrel.GtOrEq{"sold_at": params.From})
	}
	if !params.To.IsZero() {
		countQb = countQb.Where(squirrel.Lt{"sold_at": params.To})
	}
	if params.PaymentMethod != "" {
		countQb = countQb.Where(squirrel.Eq{"payment_method": params.PaymentMethod})
	}
	if params.Customer != "" {
		countQb = countQb.Where(squirrel.ILike{"customer": "%" + params.Customer + "%"})
	}

	countSQL, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	var totalCount int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count sales: %w", err)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	qb = qb.OrderBy("sold_at DESC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}

	sales, err := ScanMany(rows, func(rows pgx.Rows) (*domain.Sale, error) {
		return scanSale(rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan sales: %w", err)
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))

	return &ports.SaleListResult{
		Sales:      sales,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// Recent returns the latest sales, newest first
func (r *salesRepository) Recent(ctx context.Context, limit int) ([]domain.Sale, error) {
	if limit < 1 {
		limit = 10
	}

	query := `SELECT ` + saleColumns + `
		FROM sales
		ORDER BY sold_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent sales: %w", err)
	}

	ptrs, err := ScanMany(rows, func(rows pgx.Rows) (*domain.Sale, error) {
		return scanSale(rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan recent sales: %w", err)
	}

	sales := make([]domain.Sale, 0, len(ptrs))
	for _, s := range ptrs {
		sales = append(sales, *s)
	}
	return sales, nil
}

// Delete removes a ledger entry. Stock is never restored: a deleted
// sale still happened.
func (r *salesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrSaleNotFound, id)
	}

	r.logger.InfoContext(ctx, "sale deleted",
		slog.String("id", id.String()))

	return nil
}

// SummaryBetween aggregates the ledger over [from, to)
func (r *salesRepository) SummaryBetween(ctx context.Context, from, to time.Time) (*ports.SalesSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(total), 0),
			COALESCE(SUM(discount_amount), 0)
		FROM sales
		WHERE sold_at >= $1 AND sold_at < $2`

	summary := &ports.SalesSummary{}
	err := r.db.QueryRow(ctx, query, from, to).Scan(
		&summary.SaleCount, &summary.Revenue, &summary.DiscountsGiven,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize sales: %w", err)
	}

	return summary, nil
}

// RevenueByDay returns the revenue time series over [from, to)
func (r *salesRepository) RevenueByDay(ctx context.Context, from, to time.Time) ([]ports.DailyRevenue, error) {
	query := `
		SELECT date_trunc('day', sold_at) AS day,
			COALESCE(SUM(total), 0),
			COUNT(*)
		FROM sales
		WHERE sold_at >= $1 AND sold_at < $2
		GROUP BY day
		ORDER BY day`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue by day: %w", err)
	}
	defer rows.Close()

	var series []ports.DailyRevenue
	for rows.Next() {
		var d ports.DailyRevenue
		if err := rows.Scan(&d.Day, &d.Revenue, &d.SaleCount); err != nil {
			return nil, fmt.Errorf("failed to scan daily revenue: %w", err)
		}
		series = append(series, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return series, nil
}

// PaymentBreakdown groups revenue by payment method over [from, to)
func (r *salesRepository) PaymentBreakdown(ctx context.Context, from, to time.Time) ([]ports.PaymentMethodTotal, error) {
	query := `
		SELECT payment_method,
			COALESCE(SUM(total), 0),
			COUNT(*)
		FROM sales
		WHERE sold_at >= $1 AND sold_at < $2
		GROUP BY payment_method
		ORDER BY 2 DESC`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment breakdown: %w", err)
	}
	defer rows.Close()

	var breakdown []ports.PaymentMethodTotal
	for rows.Next() {
		var t ports.PaymentMethodTotal
		if err := rows.Scan(&t.Method, &t.Revenue, &t.SaleCount); err != nil {
			return nil, fmt.Errorf("failed to scan payment breakdown: %w", err)
		}
		breakdown = append(breakdown, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return breakdown, nil
}
