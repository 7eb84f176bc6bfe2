package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/database"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup wraps a connection to a disposable database with the
// schema applied.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and skips the test when it is
// unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4, MinConns: 1})
	require.NoError(t, err, "failed to connect to test database")

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, postgresql.Migrate(ctx, db))
	require.NoError(t, setup.TruncateAllTables(ctx))

	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes every row, children first.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"work_shifts",
		"payroll_settlements",
		"employees",
		"shops",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}

// SeedShopEmployee inserts one shop with one active hourly employee.
func (s *TestDatabaseSetup) SeedShopEmployee(t *testing.T, shopID, employeeID string) {
	t.Helper()
	ctx := context.Background()

	_, err := s.DB.Exec(ctx, `INSERT INTO shops (id, name, cycle_start_day) VALUES ($1, 'Test Shop', 1)`, shopID)
	require.NoError(t, err)

	_, err = s.DB.Exec(ctx, `
		INSERT INTO employees (id, shop_id, full_name, pay_unit, pay, is_active)
		VALUES ($1, $2, 'Test Staff', 'HOURLY', 10000, TRUE)
	`, employeeID, shopID)
	require.NoError(t, err)
}
