// cmd/seeder/main.go

// Seeder loads the product catalog from CSV or Excel sheets. It is
// meant for first-time setup and for refreshing a dev database.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"
)

type seedProduct struct {
	Barcode   string
	Name      string
	Category  string
	CostPrice decimal.Decimal
	SalePrice decimal.Decimal
	Stock     decimal.Decimal
}

func main() {
	var (
		dataDir  = flag.String("data", "./seed", "Directory containing CSV/XLSX product sheets")
		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun   = flag.Bool("dry-run", false, "Preview changes without modifying database")
	)
	flag.Parse()

	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
	slog.SetDefault(logger)

	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "kirana"),
		getEnv("DB_PASSWORD", "kirana_dev_2026"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "kirana_pos"),
		getEnv("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()

	var pool *pgxpool.Pool
	var err error
	if !*dryRun {
		pool, err = pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Error("Failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()
	}

	files, err := listSheetFiles(*dataDir)
	if err != nil {
		logger.Error("Failed to list seed files", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(files) == 0 {
		logger.Warn("no seed files found", slog.String("dir", *dataDir))
		return
	}

	totalFiles := 0
	totalProducts := 0
	var failedFiles []string

	for i, file := range files {
		fmt.Printf("PROGRESS: Processing %d/%d: %s\n", i+1, len(files), filepath.Base(file))

		var products []seedProduct
		switch strings.ToLower(filepath.Ext(file)) {
		case ".csv":
			products, err = loadCSV(file)
		case ".xlsx":
			products, err = loadXLSX(file)
		}
		if err != nil {
			logger.Error("Failed to parse seed file",
				slog.String("file", file),
				slog.String("error", err.Error()))
			failedFiles = append(failedFiles, filepath.Base(file))
			continue
		}

		if len(products) == 0 {
			logger.Warn("No products in seed file", slog.String("file", file))
			failedFiles = append(failedFiles, fmt.Sprintf("%s (0 rows)", filepath.Base(file)))
			continue
		}

		if !*dryRun {
			if err := saveProducts(ctx, pool, products); err != nil {
				logger.Error("Failed to save products",
					slog.String("file", file),
					slog.String("error", err.Error()))
				failedFiles = append(failedFiles, filepath.Base(file))
				continue
			}
		}

		fmt.Printf("SUCCESS: %s - %d products\n", filepath.Base(file), len(products))
		totalFiles++
		totalProducts += len(products)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SEEDING SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Files Processed: %d\n", totalFiles)
	fmt.Printf("Products Upserted: %d\n", totalProducts)
	if len(failedFiles) > 0 {
		fmt.Printf("\nFailed/Empty Files (%d):\n", len(failedFiles))
		for _, f := range failedFiles {
			fmt.Printf("  - %s\n", f)
		}
	}

	logger.Info("Seed operation completed",
		slog.Int("files_processed", totalFiles),
		slog.Int("products_upserted", totalProducts),
		slog.Int("failed_files", len(failedFiles)))

	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes were made to the database")
	}
}

func listSheetFiles(dir string) ([]string, error) {
	csvFiles, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	xlsxFiles, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	if err != nil {
		return nil, err
	}
	return append(csvFiles, xlsxFiles...), nil
}

// loadCSV reads a product sheet with columns barcode, name, category,
// cost_price, sale_price, stock. A header row is skipped.
func loadCSV(path string) ([]seedProduct, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var products []seedProduct
	line := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("csv read at line %d: %w", line+1, err)
		}
		line++

		if len(record) < 6 {
			return nil, fmt.Errorf("csv line %d: expected 6 columns, got %d", line, len(record))
		}

		p, err := parseProduct(record)
		if err != nil {
			if line == 1 {
				// header row
				continue
			}
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		products = append(products, p)
	}

	return products, nil
}

func loadXLSX(path string) ([]seedProduct, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets in %s", path)
	}
	sheet := file.Sheets[0]

	var products []seedProduct
	rowIdx := 0
	err = sheet.ForEachRow(func(r *xlsx.Row) error {
		rowIdx++

		get := func(i int) string {
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			if s, err := c.FormattedValue(); err == nil {
				return strings.TrimSpace(s)
			}
			return strings.TrimSpace(c.String())
		}

		record := []string{get(0), get(1), get(2), get(3), get(4), get(5)}
		p, err := parseProduct(record)
		if err != nil {
			if rowIdx == 1 {
				return nil
			}
			return fmt.Errorf("row %d: %w", rowIdx, err)
		}
		products = append(products, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return products, nil
}

func parseProduct(record []string) (seedProduct, error) {
	name := strings.TrimSpace(record[1])
	if name == "" {
		return seedProduct{}, fmt.Errorf("product name is required")
	}

	costPrice, err := decimal.NewFromString(strings.TrimSpace(record[3]))
	if err != nil {
		return seedProduct{}, fmt.Errorf("bad cost price %q", record[3])
	}
	salePrice, err := decimal.NewFromString(strings.TrimSpace(record[4]))
	if err != nil {
		return seedProduct{}, fmt.Errorf("bad sale price %q", record[4])
	}
	stock, err := decimal.NewFromString(strings.TrimSpace(record[5]))
	if err != nil {
		return seedProduct{}, fmt.Errorf("bad stock %q", record[5])
	}

	category := strings.TrimSpace(record[2])
	if category == "" {
		category = "General"
	}

	return seedProduct{
		Barcode:   strings.TrimSpace(record[0]),
		Name:      name,
		Category:  category,
		CostPrice: costPrice,
		SalePrice: salePrice,
		Stock:     stock,
	}, nil
}

// saveProducts upserts by barcode so reseeding refreshes prices and
// stock instead of duplicating rows.
func saveProducts(ctx context.Context, pool *pgxpool.Pool, products []seedProduct) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	now := time.Now()

	for _, p := range products {
		// Barcode is stored as NULL when absent so the partial unique
		// index only guards real barcodes.
		var barcode *string
		if p.Barcode != "" {
			barcode = &p.Barcode
		}

		batch.Queue(`
			INSERT INTO products (
				id, barcode, name, category, cost_price, sale_price, stock,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			ON CONFLICT (barcode) WHERE barcode IS NOT NULL DO UPDATE SET
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				cost_price = EXCLUDED.cost_price,
				sale_price = EXCLUDED.sale_price,
				stock = EXCLUDED.stock,
				updated_at = EXCLUDED.updated_at`,
			uuid.New(), barcode, p.Name, p.Category,
			p.CostPrice, p.SalePrice, p.Stock, now,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range products {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert product: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
