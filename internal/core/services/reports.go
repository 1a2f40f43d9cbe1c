// internal/core/services/reports.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
)

// ReportService builds the dashboard and sales reports.
type ReportService struct {
	sales   ports.SalesRepository
	catalog ports.CatalogRepository
	logger  *slog.Logger
}

var _ ports.ReportService = (*ReportService)(nil)

// NewReportService creates a new reporting service
func NewReportService(sales ports.SalesRepository, catalog ports.CatalogRepository, logger *slog.Logger) *ReportService {
	return &ReportService{
		sales:   sales,
		catalog: catalog,
		logger:  logger.With(slog.String("service", "reports")),
	}
}

// Dashboard assembles the landing-page summary
func (s *ReportService) Dashboard(ctx context.Context) (*ports.DashboardData, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	data := &ports.DashboardData{GeneratedAt: now}

	summary, err := s.sales.SummaryBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		s.logger.WarnContext(ctx, "today's sales summary failed", "err", err)
	} else {
		data.TodayRevenue = summary.Revenue
		data.TodaySaleCount = summary.SaleCount
	}

	stats, err := s.catalog.Stats(ctx, DefaultLowStockThreshold)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog stats failed", "err", err)
	} else {
		data.ProductCount = stats.ProductCount
		data.StockValue = stats.StockValue
		data.LowStockCount = stats.LowStockCount
	}

	return data, nil
}

// SalesReport aggregates the ledger over [from, to)
func (s *ReportService) SalesReport(ctx context.Context, from, to time.Time) (*ports.SalesReport, error) {
	summary, err := s.sales.SummaryBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to build sales report: %w", err)
	}

	breakdown, err := s.sales.PaymentBreakdown(ctx, from, to)
	if err != nil {
		s.logger.WarnContext(ctx, "payment breakdown failed", "err", err)
		breakdown = []ports.PaymentMethodTotal{}
	}

	return &ports.SalesReport{
		From:             from,
		To:               to,
		Summary:          *summary,
		PaymentBreakdown: breakdown,
	}, nil
}

// TimeSeries returns daily revenue over [from, to)
func (s *ReportService) TimeSeries(ctx context.Context, from, to time.Time) ([]ports.DailyRevenue, error) {
	series, err := s.sales.RevenueByDay(ctx, from, to)
	if err != nil {
		s.logger.WarnContext(ctx, "revenue time series failed, returning empty", "err", err)
		return []ports.DailyRevenue{}, nil
	}
	return series, nil
}

// TopProducts ranks products sold over [from, to) by quantity. The
// ranking is decoded from the frozen snapshots, so products deleted
// since still appear under the name they sold as.
func (s *ReportService) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ports.ProductStat, error) {
	if limit < 1 {
		limit = 10
	}

	sales, err := s.collectSales(ctx, from, to)
	if err != nil {
		s.logger.WarnContext(ctx, "top products failed, returning empty", "err", err)
		return []ports.ProductStat{}, nil
	}

	byProduct := make(map[uuid.UUID]*ports.ProductStat)
	for _, sale := range sales {
		for _, it := range sale.Items {
			stat, ok := byProduct[it.ProductID]
			if !ok {
				stat = &ports.ProductStat{ProductID: it.ProductID, Name: it.Name}
				byProduct[it.ProductID] = stat
			}
			stat.Quantity = stat.Quantity.Add(it.Qty)
			stat.Revenue = stat.Revenue.Add(it.Amount())
		}
	}

	stats := make([]ports.ProductStat, 0, len(byProduct))
	for _, stat := range byProduct {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Quantity.GreaterThan(stats[j].Quantity)
	})

	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

// CategoryRevenue attributes snapshot revenue to current catalog
// categories. Items whose product no longer exists land in the
// default category.
func (s *ReportService) CategoryRevenue(ctx context.Context, from, to time.Time) ([]ports.CategoryRevenue, error) {
	sales, err := s.collectSales(ctx, from, to)
	if err != nil {
		s.logger.WarnContext(ctx, "category revenue failed, returning empty", "err", err)
		return []ports.CategoryRevenue{}, nil
	}

	categories := s.categoryIndex(ctx)

	byCategory := make(map[string]*ports.CategoryRevenue)
	for _, sale := range sales {
		for _, it := range sale.Items {
			category, ok := categories[it.ProductID]
			if !ok {
				category = domain.DefaultCategory
			}
			entry, ok := byCategory[category]
			if !ok {
				entry = &ports.CategoryRevenue{Category: category}
				byCategory[category] = entry
			}
			entry.Revenue = entry.Revenue.Add(it.Amount())
		}
	}

	result := make([]ports.CategoryRevenue, 0, len(byCategory))
	for _, entry := range byCategory {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Revenue.GreaterThan(result[j].Revenue)
	})
	return result, nil
}

// collectSales pages through the ledger for a date range.
func (s *ReportService) collectSales(ctx context.Context, from, to time.Time) ([]*domain.Sale, error) {
	const pageSize = 500

	var all []*domain.Sale
	for page := 1; ; page++ {
		result, err := s.sales.List(ctx, ports.SaleListParams{
			From:     from,
			To:       to,
			Page:     page,
			PageSize: pageSize,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, result.Sales...)
		if page >= result.TotalPages || len(result.Sales) == 0 {
			break
		}
	}
	return all, nil
}

// categoryIndex maps product ids to their current category.
func (s *ReportService) categoryIndex(ctx context.Context) map[uuid.UUID]string {
	index := make(map[uuid.UUID]string)
	for page := 1; ; page++ {
		result, err := s.catalog.List(ctx, ports.ProductListParams{Page: page, PageSize: 500})
		if err != nil {
			s.logger.WarnContext(ctx, "catalog page failed while indexing categories", "err", err)
			return index
		}
		for _, p := range result.Products {
			index[p.ID] = p.Category
		}
		if page >= result.TotalPages || len(result.Products) == 0 {
			break
		}
	}
	return index
}
