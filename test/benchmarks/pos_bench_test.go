package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ammerola/kirana-be/internal/adapters/db"
	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
	"github.com/ammerola/kirana-be/internal/core/services"
	"github.com/ammerola/kirana-be/internal/invoice"
	"github.com/ammerola/kirana-be/test/helpers"
)

func BenchmarkCatalogOperations(b *testing.B) {
	// Setup
	testDB := helpers.SetupTestDB(&testing.T{})
	defer testDB.Database.Close()

	repo := db.NewCatalogRepository(testDB.Database, helpers.TestLogger())
	service := services.NewCatalogService(repo, helpers.TestLogger())
	ctx := context.Background()

	b.Run("Create", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			product := helpers.CreateTestProduct(func(p *domain.Product) {
				p.Barcode = fmt.Sprintf("BENCH-%d", i)
				p.Name = fmt.Sprintf("Benchmark Product %d", i)
			})
			_ = service.SaveProduct(ctx, product)
		}
	})

	// Pre-create products for read benchmarks
	products := helpers.CreateTestProducts(100)
	for i := range products {
		products[i].Barcode = fmt.Sprintf("READ-%04d", i)
		_ = service.SaveProduct(ctx, &products[i])
	}

	b.Run("Read", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			p := products[i%len(products)]
			_, _ = service.GetByID(ctx, p.ID)
		}
	})

	b.Run("FindByBarcode", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = service.FindByBarcode(ctx, fmt.Sprintf("READ-%04d", i%len(products)))
		}
	})

	b.Run("List", func(b *testing.B) {
		params := ports.ProductListParams{
			Page:     1,
			PageSize: 50,
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = service.List(ctx, params)
		}
	})

	b.Run("Search", func(b *testing.B) {
		params := ports.ProductListParams{
			Search:   "test",
			Page:     1,
			PageSize: 50,
		}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = service.List(ctx, params)
		}
	})

	b.Run("BatchCreate", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			batch := helpers.CreateTestProducts(100)
			for j := range batch {
				batch[j].Barcode = fmt.Sprintf("BATCH-%d-%d", i, j)
			}
			_ = repo.SaveBatch(ctx, batch)
		}
	})
}

func BenchmarkCartMath(b *testing.B) {
	cart := buildLargeCart(200)

	b.Run("Subtotal", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = cart.Subtotal()
		}
	})

	b.Run("RequestedQuantities", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = cart.RequestedQuantities()
		}
	})
}

func BenchmarkInvoiceRendering(b *testing.B) {
	renderer := invoice.NewRenderer(invoice.ShopInfo{
		Name:    "Benchmark Kirana",
		Address: "12 Market Road",
		Phone:   "+91 98765 43210",
	})
	sale := buildLargeSale(40)

	b.Run("PDF", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = renderer.RenderPDF(sale)
		}
	})

	b.Run("HTML", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = renderer.RenderHTML(sale)
		}
	})

	b.Run("CSV", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = renderer.RenderCSV(sale)
		}
	})
}

func BenchmarkItemsEncoding(b *testing.B) {
	sale := buildLargeSale(40)
	encoded, _ := domain.EncodeItems(sale.Items)

	b.Run("Encode", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = domain.EncodeItems(sale.Items)
		}
	})

	b.Run("Decode", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = domain.DecodeItems(encoded)
		}
	})
}

// Memory allocation benchmarks
func BenchmarkMemoryAllocation(b *testing.B) {
	b.Run("Product", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = helpers.CreateTestProduct(func(p *domain.Product) {
				p.Stock = decimal.NewFromInt(int64(i % 100))
			})
		}
	})

	b.Run("ProductListResult", func(b *testing.B) {
		products := make([]*domain.Product, 100)
		for i := range products {
			products[i] = helpers.CreateTestProduct()
		}

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = &ports.ProductListResult{
				Products:   products,
				Page:       1,
				PageSize:   50,
				TotalCount: 100,
				TotalPages: 2,
			}
		}
	})
}
