package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"
)

const lineQuery = `
	SELECT c.id, c.user_id, c.product_id, c.quantity, p.name, p.price, p.is_active, c.added_at
	FROM cart_items c
	JOIN products p ON p.id = c.product_id
	WHERE c.user_id = ?
	ORDER BY c.added_at DESC, c.id DESC`

type MySQLCartRepository struct {
	db *sql.DB
}

func NewMySQLCartRepository(db *sql.DB) *MySQLCartRepository {
	return &MySQLCartRepository{db: db}
}

func (r *MySQLCartRepository) FindByUser(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, lineQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("querying cart: %w", err)
	}
	return scanLines(rows)
}

// FindByUserForUpdate locks the user's cart rows until tx ends. The joined
// product rows are read without locks; stock is only locked in id order
// by the writers that change it.
func (r *MySQLCartRepository) FindByUserForUpdate(ctx context.Context, tx *sql.Tx, userID int64) ([]domain.CartLine, error) {
	rows, err := tx.QueryContext(ctx, lineQuery+` FOR UPDATE OF c`, userID)
	if err != nil {
		return nil, fmt.Errorf("locking cart: %w", err)
	}
	return scanLines(rows)
}

func scanLines(rows *sql.Rows) ([]domain.CartLine, error) {
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.ProductName, &l.UnitPrice, &l.ProductActive, &l.AddedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning cart row: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cart rows: %w", err)
	}

	return lines, nil
}

// AddQuantity creates the (user, product) line or adds to its quantity.
func (r *MySQLCartRepository) AddQuantity(ctx context.Context, tx *sql.Tx, userID, productID int64, quantity int) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`

	if _, err := tx.ExecContext(ctx, query, userID, productID, quantity); err != nil {
		return fmt.Errorf("adding cart item: %w", err)
	}
	return nil
}

func (r *MySQLCartRepository) SetQuantity(ctx context.Context, tx *sql.Tx, userID, productID int64, quantity int) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = VALUES(quantity)`

	if _, err := tx.ExecContext(ctx, query, userID, productID, quantity); err != nil {
		return fmt.Errorf("setting cart item quantity: %w", err)
	}
	return nil
}

func (r *MySQLCartRepository) Delete(ctx context.Context, tx *sql.Tx, userID, productID int64) (bool, error) {
	result, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`, userID, productID)
	if err != nil {
		return false, fmt.Errorf("deleting cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *MySQLCartRepository) DeleteAll(ctx context.Context, tx *sql.Tx, userID int64) (int64, error) {
	result, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("clearing cart: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected, nil
}

func (r *MySQLCartRepository) Exists(ctx context.Context, userID, productID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM cart_items WHERE user_id = ? AND product_id = ?)`,
		userID, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking cart item: %w", err)
	}
	return exists, nil
}
