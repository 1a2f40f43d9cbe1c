// test/helpers/helpers.go
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/kirana-be/internal/adapters/db"
	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container for integration tests
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_pos",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_pos",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	// Wait for the container to accept connections
	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	ctx := context.Background()
	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		SourcePath: "../../migrations",
		TableName:  "schema_migrations",
		SchemaName: "public",
	}

	err = db.RunMigrationsWithRetry(ctx, migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		db.Close()
	})

	return mock, db
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-api",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_pos",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Invoice: config.InvoiceConfig{
			ShopName:    "Test Kirana",
			ShopAddress: "12 Market Lane",
			ShopPhone:   "+91 98765 43210",
			Footer:      "Thank you!",
			SessionTTL:  12 * time.Hour,
		},
		Security: config.SecurityConfig{
			UnlockPassword:    "test-password",
			RateLimitRequests: 100,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"*"},
			SecureHeaders:     false,
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// CreateTestProduct creates a catalog product for tests
func CreateTestProduct(overrides ...func(*domain.Product)) *domain.Product {
	product := &domain.Product{
		ID:        uuid.New(),
		Barcode:   "8901234567890",
		Name:      "Basmati Rice 1kg",
		Category:  "Grains",
		CostPrice: decimal.NewFromFloat(52.00),
		SalePrice: decimal.NewFromFloat(68.00),
		Stock:     decimal.NewFromInt(40),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	for _, override := range overrides {
		override(product)
	}

	return product
}

// CreateTestProducts creates multiple catalog products
func CreateTestProducts(count int) []domain.Product {
	products := make([]domain.Product, count)

	categories := []string{"Grains", "Dairy", "Snacks", "Beverages", "Household"}

	for i := 0; i < count; i++ {
		products[i] = *CreateTestProduct(func(p *domain.Product) {
			p.Barcode = fmt.Sprintf("890123456%04d", i+1)
			p.Name = fmt.Sprintf("Test Product %d", i+1)
			p.Category = categories[i%len(categories)]
			p.SalePrice = decimal.NewFromFloat(float64(10 + i*5))
			p.CostPrice = p.SalePrice.Mul(decimal.NewFromFloat(0.8)).Round(2)
		})
	}

	return products
}

// CreateTestSale creates a committed sale for tests
func CreateTestSale(overrides ...func(*domain.Sale)) *domain.Sale {
	items := []domain.SaleItem{
		{
			ProductID: uuid.New(),
			Name:      "Basmati Rice 1kg",
			Qty:       decimal.NewFromInt(2),
			UnitPrice: decimal.NewFromFloat(68.00),
		},
		{
			ProductID: uuid.New(),
			Name:      "Toned Milk 500ml",
			Qty:       decimal.NewFromInt(3),
			UnitPrice: decimal.NewFromFloat(27.00),
		},
	}

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Amount())
	}

	sale := &domain.Sale{
		ID:              uuid.New(),
		SaleNumber:      1001,
		SoldAt:          time.Now(),
		Subtotal:        subtotal,
		DiscountPercent: decimal.Zero,
		DiscountAmount:  decimal.Zero,
		Total:           subtotal,
		Items:           items,
		PaymentMethod:   domain.PaymentCash,
		CreatedAt:       time.Now(),
	}

	for _, override := range overrides {
		override(sale)
	}

	return sale
}

// AssertDecimalEqual compares decimals by value, not representation
func AssertDecimalEqual(t *testing.T, expected, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.True(t, expected.Equal(actual),
		append([]interface{}{fmt.Sprintf("expected %s, got %s", expected, actual)}, msgAndArgs...)...)
}

// TruncateAllTables truncates all tables in the test database
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"sales",
		"products",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}

// SeedProducts inserts catalog products directly
func SeedProducts(t *testing.T, db *pgxpool.Pool, products []domain.Product) {
	t.Helper()

	ctx := context.Background()

	for _, p := range products {
		query := `
			INSERT INTO products (
				id, barcode, name, category, cost_price, sale_price, stock,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`

		var barcode *string
		if p.Barcode != "" {
			barcode = &p.Barcode
		}

		_, err := db.Exec(ctx, query,
			p.ID, barcode, p.Name, p.Category, p.CostPrice, p.SalePrice,
			p.Stock, p.CreatedAt, p.UpdatedAt,
		)
		require.NoError(t, err, "Failed to seed product")
	}
}

// SeedSales inserts ledger rows directly
func SeedSales(t *testing.T, db *pgxpool.Pool, sales []domain.Sale) {
	t.Helper()

	ctx := context.Background()

	for _, s := range sales {
		itemsJSON, err := domain.EncodeItems(s.Items)
		require.NoError(t, err, "Failed to encode sale items")

		query := `
			INSERT INTO sales (
				id, sale_number, sold_at, subtotal, discount_percent,
				discount_amount, total, items, payment_method, customer,
				notes, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`

		_, err = db.Exec(ctx, query,
			s.ID, s.SaleNumber, s.SoldAt, s.Subtotal, s.DiscountPercent,
			s.DiscountAmount, s.Total, itemsJSON, s.PaymentMethod,
			s.Customer, s.Notes, s.CreatedAt,
		)
		require.NoError(t, err, "Failed to seed sale")
	}
}

// AssertEventuallyWithTimeout asserts that a condition is met within a timeout
func AssertEventuallyWithTimeout(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Errorf("Condition not met within %v: %s", timeout, msg)
}

// CreateTempFile creates a temporary file for testing
func CreateTempFile(t *testing.T, content []byte, extension string) string {
	t.Helper()

	file, err := os.CreateTemp("", fmt.Sprintf("test-*%s", extension))
	require.NoError(t, err, "Failed to create temp file")

	_, err = file.Write(content)
	require.NoError(t, err, "Failed to write to temp file")

	file.Close()

	t.Cleanup(func() {
		os.Remove(file.Name())
	})

	return file.Name()
}
