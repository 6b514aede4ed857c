package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []struct {
	name  string
	query string
}{
	{"users", `
	CREATE TABLE IF NOT EXISTS users (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(150) NOT NULL,
		email VARCHAR(150) NOT NULL UNIQUE,
		phone VARCHAR(30) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`},
	{"products", `
	CREATE TABLE IF NOT EXISTS products (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		price DECIMAL(12,2) NOT NULL,
		stock_quantity INT NOT NULL DEFAULT 0,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT chk_products_stock CHECK (stock_quantity >= 0)
	)`},
	{"cart_items", `
	CREATE TABLE IF NOT EXISTS cart_items (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		added_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_cart_user_product (user_id, product_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE,
		CONSTRAINT chk_cart_quantity CHECK (quantity >= 1)
	)`},
	{"quotations", `
	CREATE TABLE IF NOT EXISTS quotations (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		name VARCHAR(150) NOT NULL,
		address VARCHAR(255) NOT NULL,
		contact VARCHAR(50) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		total_price DECIMAL(14,2) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_quotations_user_status (user_id, status),
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`},
	{"quotation_items", `
	CREATE TABLE IF NOT EXISTS quotation_items (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		quotation_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		unit_price DECIMAL(12,2) NOT NULL,
		FOREIGN KEY (quotation_id) REFERENCES quotations(id) ON DELETE CASCADE,
		FOREIGN KEY (product_id) REFERENCES products(id),
		INDEX idx_quotation_items_quotation (quotation_id)
	)`},
	{"orders", `
	CREATE TABLE IF NOT EXISTS orders (
		id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		quotation_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		total_amount DECIMAL(14,2) NOT NULL,
		payment_slip VARCHAR(512) NOT NULL,
		payment_status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		deliver_status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
		created_at DATETIME(6) NOT NULL,
		delivered_at DATETIME(6) NULL,
		version BIGINT NOT NULL DEFAULT 0,
		UNIQUE KEY uq_orders_quotation (quotation_id),
		INDEX idx_orders_user (user_id),
		FOREIGN KEY (quotation_id) REFERENCES quotations(id),
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`},
}

// Tables lists the schema tables in creation order.
func Tables() []string {
	names := make([]string, len(schema))
	for i, tbl := range schema {
		names[i] = tbl.name
	}
	return names
}

// Migrate creates any missing table. It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, tbl := range schema {
		if _, err := db.ExecContext(ctx, tbl.query); err != nil {
			return fmt.Errorf("creating table %s: %w", tbl.name, err)
		}
	}
	return nil
}
