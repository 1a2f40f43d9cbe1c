// internal/core/services/sales.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
)

// SalesService handles ledger reads and deletions. All writes go
// through the checkout coordinator.
type SalesService struct {
	repo   ports.SalesRepository
	logger *slog.Logger
}

var _ ports.SalesService = (*SalesService)(nil)

// NewSalesService creates a new sales ledger service
func NewSalesService(repo ports.SalesRepository, logger *slog.Logger) *SalesService {
	return &SalesService{
		repo:   repo,
		logger: logger.With(slog.String("service", "sales")),
	}
}

// GetByID retrieves a sale by ID
func (s *SalesService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrSaleNotFound, id)
	}
	return sale, nil
}

// List retrieves ledger entries newest first. A read failure degrades
// to an empty page.
func (s *SalesService) List(ctx context.Context, params ports.SaleListParams) (*ports.SaleListResult, error) {
	result, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.WarnContext(ctx, "sales list failed, returning empty page", "err", err)
		return &ports.SaleListResult{
			Sales:    []*domain.Sale{},
			Page:     params.Page,
			PageSize: params.PageSize,
		}, nil
	}
	return result, nil
}

// Recent returns the latest sales
func (s *SalesService) Recent(ctx context.Context, limit int) ([]domain.Sale, error) {
	sales, err := s.repo.Recent(ctx, limit)
	if err != nil {
		s.logger.WarnContext(ctx, "recent sales failed, returning empty list", "err", err)
		return []domain.Sale{}, nil
	}
	return sales, nil
}

// Delete removes a ledger entry. Stock already sold stays sold.
func (s *SalesService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "sale removed from ledger",
		slog.String("id", id.String()))

	return nil
}
