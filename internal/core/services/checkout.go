// internal/core/services/checkout.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
	"github.com/ammerola/kirana-be/internal/invoice"
)

// CheckoutService coordinates closing a cart into a sale: validate the
// whole cart, deduct stock, and write the ledger entry in one database
// transaction. Invoice artifacts are generated only after the
// transaction commits.
type CheckoutService struct {
	catalog   ports.CatalogRepository
	sales     ports.SalesRepository
	sessions  ports.SessionStore
	db        ports.Database
	renderer  ports.InvoiceRenderer
	artifacts ports.ArtifactStore
	tasks     ports.TaskEnqueuer
	logger    *slog.Logger
}

var _ ports.CheckoutService = (*CheckoutService)(nil)

// NewCheckoutService creates a new checkout coordinator
func NewCheckoutService(
	catalog ports.CatalogRepository,
	sales ports.SalesRepository,
	sessions ports.SessionStore,
	db ports.Database,
	renderer ports.InvoiceRenderer,
	artifacts ports.ArtifactStore,
	tasks ports.TaskEnqueuer,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		catalog:   catalog,
		sales:     sales,
		sessions:  sessions,
		db:        db,
		renderer:  renderer,
		artifacts: artifacts,
		tasks:     tasks,
		logger:    logger.With(slog.String("service", "checkout")),
	}
}

var hundred = decimal.NewFromInt(100)

// Checkout closes the session's cart into a sale. Either every line
// commits or nothing does; concurrent checkouts touching the same
// products serialize on row locks inside the transaction.
func (s *CheckoutService) Checkout(ctx context.Context, params ports.CheckoutParams) (*ports.CheckoutResult, error) {
	if params.DiscountPercent.IsNegative() || params.DiscountPercent.GreaterThan(hundred) {
		return nil, domain.InvalidDiscountError(params.DiscountPercent)
	}
	if !domain.ValidPaymentMethod(params.PaymentMethod) {
		return nil, fmt.Errorf("unknown payment method %q", params.PaymentMethod)
	}

	cart, err := s.sessions.Get(ctx, params.SessionID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	for _, line := range cart.Lines {
		if !line.Qty.IsPositive() {
			return nil, domain.InvalidQuantityError(line.Name, line.Qty)
		}
	}

	sale, err := s.commit(ctx, cart, params)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Delete(ctx, params.SessionID); err != nil {
		s.logger.WarnContext(ctx, "failed to drop session after checkout",
			slog.String("session_id", params.SessionID),
			"err", err)
	}

	result := &ports.CheckoutResult{Sale: sale}

	// The sale is committed; artifact problems are reported, never
	// propagated as a checkout failure.
	if err := s.renderArtifacts(ctx, sale); err != nil {
		s.logger.ErrorContext(ctx, "invoice artifacts failed, re-render queued",
			slog.String("sale_id", sale.ID.String()),
			"err", err)
		result.RenderErr = fmt.Errorf("%w: %v", domain.ErrRenderFailure, err)

		if s.tasks != nil {
			if qErr := s.tasks.EnqueueInvoiceRender(ctx, sale.ID); qErr != nil {
				s.logger.ErrorContext(ctx, "failed to enqueue invoice re-render",
					slog.String("sale_id", sale.ID.String()),
					"err", qErr)
			}
		}
	}

	return result, nil
}

// commit runs the lock-validate-deduct-insert cycle in one transaction.
func (s *CheckoutService) commit(ctx context.Context, cart *domain.Cart, params ports.CheckoutParams) (*domain.Sale, error) {
	requested := cart.RequestedQuantities()
	ids := make([]uuid.UUID, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}

	var sale *domain.Sale

	err := s.db.Transaction(ctx, func(tx pgx.Tx) error {
		locked, err := s.catalog.LockForUpdate(ctx, tx, ids)
		if err != nil {
			return domain.StoreError(err)
		}

		// Availability is judged against the cart as a whole: two
		// lines of the same product draw down one running balance.
		for _, line := range cart.Lines {
			p, ok := locked[line.ProductID]
			if !ok {
				return domain.ProductNotFoundError(line.ProductID)
			}
			if !p.HasStock(requested[p.ID]) {
				return domain.InsufficientStockError(p.Name, p.Stock, requested[p.ID])
			}
		}

		subtotal := cart.Subtotal()
		discountAmount := subtotal.Mul(params.DiscountPercent).Div(hundred)
		total := subtotal.Sub(discountAmount)

		items := make([]domain.SaleItem, 0, len(cart.Lines))
		for _, line := range cart.Lines {
			items = append(items, domain.SaleItem{
				ProductID: line.ProductID,
				Name:      line.Name,
				Qty:       line.Qty,
				UnitPrice: line.UnitPrice,
			})
		}

		now := time.Now()
		sale = &domain.Sale{
			ID:              uuid.New(),
			SoldAt:          now,
			Subtotal:        subtotal,
			DiscountPercent: params.DiscountPercent,
			DiscountAmount:  discountAmount,
			Total:           total,
			Items:           items,
			PaymentMethod:   params.PaymentMethod,
			Customer:        params.Customer,
			Notes:           params.Notes,
			CreatedAt:       now,
		}

		for id, qty := range requested {
			if err := s.catalog.DeductStock(ctx, tx, id, qty); err != nil {
				return domain.StoreError(err)
			}
		}

		if err := s.sales.Insert(ctx, tx, sale); err != nil {
			return domain.StoreError(err)
		}

		return nil
	})

	if err != nil {
		if isCheckoutError(err) {
			return nil, err
		}
		return nil, domain.StoreError(err)
	}

	s.logger.InfoContext(ctx, "checkout committed",
		slog.String("sale_id", sale.ID.String()),
		slog.Int64("sale_number", sale.SaleNumber),
		slog.String("total", sale.Total.String()),
		slog.Int("lines", len(sale.Items)))

	return sale, nil
}

// renderArtifacts builds and stores all invoice documents for a sale.
func (s *CheckoutService) renderArtifacts(ctx context.Context, sale *domain.Sale) error {
	if s.renderer == nil || s.artifacts == nil {
		return nil
	}
	return RenderAndStoreInvoice(ctx, s.renderer, s.artifacts, sale)
}

// RenderAndStoreInvoice generates the PDF, HTML, and CSV invoice
// documents for a sale and uploads them to the artifact store. The
// worker uses the same path when retrying a failed render.
func RenderAndStoreInvoice(ctx context.Context, renderer ports.InvoiceRenderer, artifacts ports.ArtifactStore, sale *domain.Sale) error {
	documents := []struct {
		render      func(*domain.Sale) ([]byte, error)
		format      string
		contentType string
	}{
		{renderer.RenderPDF, invoice.FormatPDF, "application/pdf"},
		{renderer.RenderHTML, invoice.FormatHTML, "text/html; charset=utf-8"},
		{renderer.RenderCSV, invoice.FormatCSV, "text/csv"},
	}

	for _, doc := range documents {
		data, err := doc.render(sale)
		if err != nil {
			return fmt.Errorf("render %s: %w", doc.format, err)
		}

		key := invoice.ArtifactKey(sale.ID, doc.format)
		if err := artifacts.Upload(ctx, key, bytes.NewReader(data), doc.contentType); err != nil {
			return fmt.Errorf("upload %s: %w", doc.format, err)
		}
	}

	return nil
}

// isCheckoutError reports whether err is one of the typed validation
// failures that should reach the caller untouched.
func isCheckoutError(err error) bool {
	return errors.Is(err, domain.ErrProductNotFound) ||
		errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidDiscount) ||
		errors.Is(err, domain.ErrStoreUnavailable)
}
