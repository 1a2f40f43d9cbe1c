//go:build integration
// +build integration

package db_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/kirana-be/internal/adapters/db"
	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
	"github.com/ammerola/kirana-be/test/helpers"
)

type SalesRepositorySuite struct {
	suite.Suite
	testDB  *helpers.TestDB
	repo    ports.SalesRepository
	catalog ports.CatalogRepository
	ctx     context.Context
}

func (s *SalesRepositorySuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.repo = db.NewSalesRepository(s.testDB.Database, helpers.TestLogger())
	s.catalog = db.NewCatalogRepository(s.testDB.Database, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *SalesRepositorySuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *SalesRepositorySuite) insert(sale *domain.Sale) {
	err := s.testDB.Database.Transaction(s.ctx, func(tx pgx.Tx) error {
		return s.repo.Insert(s.ctx, tx, sale)
	})
	s.Require().NoError(err)
}

func (s *SalesRepositorySuite) TestInsert_AssignsSequentialNumbers() {
	first := helpers.CreateTestSale()
	second := helpers.CreateTestSale()

	s.insert(first)
	s.insert(second)

	s.NotZero(first.SaleNumber)
	s.Equal(first.SaleNumber+1, second.SaleNumber)
}

func (s *SalesRepositorySuite) TestFindByID_RoundTripsItems() {
	sale := helpers.CreateTestSale(func(sale *domain.Sale) {
		sale.Customer = "Asha"
		sale.Notes = "evening delivery"
	})
	s.insert(sale)

	found, err := s.repo.FindByID(s.ctx, sale.ID)
	s.NoError(err)
	s.Require().NotNil(found)
	s.Equal(sale.SaleNumber, found.SaleNumber)
	s.Equal("Asha", found.Customer)
	s.Len(found.Items, 2)
	s.Equal(sale.Items[0].Name, found.Items[0].Name)
	s.True(sale.Items[0].Qty.Equal(found.Items[0].Qty))
	s.True(sale.Total.Equal(found.Total))
}

func (s *SalesRepositorySuite) TestFindByID_NonExistent() {
	found, err := s.repo.FindByID(s.ctx, uuid.New())
	s.NoError(err)
	s.Nil(found)
}

func (s *SalesRepositorySuite) TestList_FiltersAndPaginates() {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	methods := []domain.PaymentMethod{
		domain.PaymentCash, domain.PaymentCard, domain.PaymentMobile,
	}

	for i := 0; i < 12; i++ {
		sale := helpers.CreateTestSale(func(sale *domain.Sale) {
			sale.SoldAt = base.Add(time.Duration(i) * time.Hour)
			sale.PaymentMethod = methods[i%len(methods)]
			sale.Customer = fmt.Sprintf("Customer %d", i)
		})
		s.insert(sale)
	}

	s.Run("paginates_newest_first", func() {
		result, err := s.repo.List(s.ctx, ports.SaleListParams{Page: 1, PageSize: 5})
		s.NoError(err)
		s.Len(result.Sales, 5)
		s.Equal(int64(12), result.TotalCount)
		s.Equal(3, result.TotalPages)
		s.Equal("Customer 11", result.Sales[0].Customer)
	})

	s.Run("filters_by_payment_method", func() {
		result, err := s.repo.List(s.ctx, ports.SaleListParams{
			PaymentMethod: string(domain.PaymentCard),
			Page:          1,
			PageSize:      20,
		})
		s.NoError(err)
		s.Len(result.Sales, 4)
		for _, sale := range result.Sales {
			s.Equal(domain.PaymentCard, sale.PaymentMethod)
		}
	})

	s.Run("filters_by_date_range", func() {
		result, err := s.repo.List(s.ctx, ports.SaleListParams{
			From:     base.Add(3 * time.Hour),
			To:       base.Add(6 * time.Hour),
			Page:     1,
			PageSize: 20,
		})
		s.NoError(err)
		s.Len(result.Sales, 3)
	})

	s.Run("filters_by_customer", func() {
		result, err := s.repo.List(s.ctx, ports.SaleListParams{
			Customer: "customer 7",
			Page:     1,
			PageSize: 20,
		})
		s.NoError(err)
		s.Len(result.Sales, 1)
	})
}

func (s *SalesRepositorySuite) TestRecent() {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		sale := helpers.CreateTestSale(func(sale *domain.Sale) {
			sale.SoldAt = base.Add(time.Duration(i) * time.Minute)
		})
		s.insert(sale)
	}

	recent, err := s.repo.Recent(s.ctx, 5)
	s.NoError(err)
	s.Len(recent, 5)
	s.True(recent[0].SoldAt.After(recent[4].SoldAt))
}

func (s *SalesRepositorySuite) TestDelete_DoesNotRestoreStock() {
	product := helpers.CreateTestProduct(func(p *domain.Product) {
		p.Stock = decimal.NewFromInt(10)
	})
	s.Require().NoError(s.catalog.Save(s.ctx, product))

	sale := helpers.CreateTestSale(func(sale *domain.Sale) {
		sale.Items = []domain.SaleItem{{
			ProductID: product.ID,
			Name:      product.Name,
			Qty:       decimal.NewFromInt(4),
			UnitPrice: product.SalePrice,
		}}
	})

	err := s.testDB.Database.Transaction(s.ctx, func(tx pgx.Tx) error {
		if err := s.catalog.DeductStock(s.ctx, tx, product.ID, decimal.NewFromInt(4)); err != nil {
			return err
		}
		return s.repo.Insert(s.ctx, tx, sale)
	})
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Delete(s.ctx, sale.ID))

	found, err := s.repo.FindByID(s.ctx, sale.ID)
	s.NoError(err)
	s.Nil(found)

	after, err := s.catalog.FindByID(s.ctx, product.ID)
	s.NoError(err)
	s.True(decimal.NewFromInt(6).Equal(after.Stock))
}

func (s *SalesRepositorySuite) TestDelete_NonExistent() {
	err := s.repo.Delete(s.ctx, uuid.New())
	s.ErrorIs(err, domain.ErrSaleNotFound)
}

func (s *SalesRepositorySuite) TestSummaryBetween() {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	inside := helpers.CreateTestSale(func(sale *domain.Sale) {
		sale.SoldAt = base.Add(2 * time.Hour)
		sale.DiscountPercent = decimal.NewFromInt(10)
		sale.DiscountAmount = sale.Subtotal.Mul(decimal.NewFromFloat(0.1)).Round(2)
		sale.Total = sale.Subtotal.Sub(sale.DiscountAmount)
	})
	outside := helpers.CreateTestSale(func(sale *domain.Sale) {
		sale.SoldAt = base.AddDate(0, 0, 2)
	})
	s.insert(inside)
	s.insert(outside)

	summary, err := s.repo.SummaryBetween(s.ctx, base, base.AddDate(0, 0, 1))
	s.NoError(err)
	s.Equal(int64(1), summary.SaleCount)
	s.True(inside.Total.Equal(summary.Revenue))
	s.True(inside.DiscountAmount.Equal(summary.DiscountsGiven))
}

func (s *SalesRepositorySuite) TestRevenueByDay() {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for day := 0; day < 3; day++ {
		for n := 0; n <= day; n++ {
			sale := helpers.CreateTestSale(func(sale *domain.Sale) {
				sale.SoldAt = base.AddDate(0, 0, day).Add(time.Duration(n) * time.Hour)
			})
			s.insert(sale)
		}
	}

	series, err := s.repo.RevenueByDay(s.ctx, base, base.AddDate(0, 0, 7))
	s.NoError(err)
	s.Require().Len(series, 3)
	s.Equal(int64(1), series[0].SaleCount)
	s.Equal(int64(2), series[1].SaleCount)
	s.Equal(int64(3), series[2].SaleCount)
}

func (s *SalesRepositorySuite) TestPaymentBreakdown() {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		method := domain.PaymentCash
		if i >= 3 {
			method = domain.PaymentMobile
		}
		sale := helpers.CreateTestSale(func(sale *domain.Sale) {
			sale.SoldAt = base.Add(time.Duration(i) * time.Hour)
			sale.PaymentMethod = method
		})
		s.insert(sale)
	}

	breakdown, err := s.repo.PaymentBreakdown(s.ctx, base, base.AddDate(0, 0, 1))
	s.NoError(err)
	s.Require().Len(breakdown, 2)
	s.Equal(domain.PaymentCash, breakdown[0].Method)
	s.Equal(int64(3), breakdown[0].SaleCount)
	s.Equal(domain.PaymentMobile, breakdown[1].Method)
	s.Equal(int64(2), breakdown[1].SaleCount)
}

func TestSalesRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(SalesRepositorySuite))
}
