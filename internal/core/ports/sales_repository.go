// internal/core/ports/sales_repository.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/kirana-be/internal/core/domain"
)

// SalesRepository defines the persistence port for the sales ledger.
type SalesRepository interface {
	// Insert writes the sale on the caller's transaction, assigning
	// the next sale number.
	Insert(ctx context.Context, tx pgx.Tx, sale *domain.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	List(ctx context.Context, params SaleListParams) (*SaleListResult, error)
	Recent(ctx context.Context, limit int) ([]domain.Sale, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SummaryBetween(ctx context.Context, from, to time.Time) (*SalesSummary, error)
	RevenueByDay(ctx context.Context, from, to time.Time) ([]DailyRevenue, error)
	PaymentBreakdown(ctx context.Context, from, to time.Time) ([]PaymentMethodTotal, error)
}

// SaleListParams holds filters for listing the ledger
type SaleListParams struct {
	From          time.Time
	To            time.Time
	PaymentMethod string
	Customer      string
	Page          int
	PageSize      int
}

// SaleListResult holds one page of ledger results, newest first
type SaleListResult struct {
	Sales      []*domain.Sale `json:"sales"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalCount int64          `json:"total_count"`
	TotalPages int            `json:"total_pages"`
}

// SalesSummary aggregates the ledger over a period
type SalesSummary struct {
	SaleCount      int64           `json:"sale_count"`
	Revenue        decimal.Decimal `json:"revenue"`
	DiscountsGiven decimal.Decimal `json:"discounts_given"`
}

// DailyRevenue is one point of the revenue time series
type DailyRevenue struct {
	Day       time.Time       `json:"day"`
	Revenue   decimal.Decimal `json:"revenue"`
	SaleCount int64           `json:"sale_count"`
}

// PaymentMethodTotal is revenue grouped by payment method
type PaymentMethodTotal struct {
	Method    domain.PaymentMethod `json:"method"`
	Revenue   decimal.Decimal      `json:"revenue"`
	SaleCount int64                `json:"sale_count"`
}
