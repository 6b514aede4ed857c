package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"storefront/internal/infrastructure/mysql"
)

const defaultTestDSN = "root:@tcp(localhost:3306)/storefront_test?parseTime=true"

// SetupTestDB opens the integration database named by TEST_DB_DSN (default
// storefront_test on localhost) and skips the test when it is unreachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		dsn = defaultTestDSN
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties every table, children first, and closes db.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := mysql.Tables()
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", tables[i])); err != nil {
			t.Logf("failed to clean table %s: %v", tables[i], err)
		}
	}

	db.Close()
}

// SetupTestTables creates the application schema.
func SetupTestTables(t *testing.T, db *sql.DB) {
	if err := mysql.Migrate(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
}

func InsertUser(t *testing.T, db *sql.DB, name, email string) int64 {
	res, err := db.Exec(`INSERT INTO users (name, email, phone) VALUES (?, ?, '555-0100')`, name, email)
	if err != nil {
		t.Fatalf("failed to insert user: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func InsertProduct(t *testing.T, db *sql.DB, name string, price string, stock int, active bool) int64 {
	res, err := db.Exec(
		`INSERT INTO products (name, description, price, stock_quantity, is_active) VALUES (?, '', ?, ?, ?)`,
		name, decimal.RequireFromString(price), stock, active,
	)
	if err != nil {
		t.Fatalf("failed to insert product: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func ProductStock(t *testing.T, db *sql.DB, productID int64) int {
	var stock int
	if err := db.QueryRow(`SELECT stock_quantity FROM products WHERE id = ?`, productID).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}

func InsertQuotation(t *testing.T, db *sql.DB, userID int64, status string, total string) int64 {
	res, err := db.Exec(
		`INSERT INTO quotations (user_id, name, address, contact, status, total_price, created_at)
		 VALUES (?, 'Jane', '1 Main St', '555-0100', ?, ?, UTC_TIMESTAMP(6))`,
		userID, status, decimal.RequireFromString(total),
	)
	if err != nil {
		t.Fatalf("failed to insert quotation: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

func InsertQuotationItem(t *testing.T, db *sql.DB, quotationID, productID int64, quantity int, unitPrice string) {
	_, err := db.Exec(
		`INSERT INTO quotation_items (quotation_id, product_id, quantity, unit_price) VALUES (?, ?, ?, ?)`,
		quotationID, productID, quantity, decimal.RequireFromString(unitPrice),
	)
	if err != nil {
		t.Fatalf("failed to insert quotation item: %v", err)
	}
}
