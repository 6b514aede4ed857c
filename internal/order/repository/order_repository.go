package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/errors"
	storemysql "storefront/internal/infrastructure/mysql"
)

const orderColumns = `id, quotation_id, user_id, total_amount, payment_slip, payment_status, deliver_status, created_at, delivered_at, version`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o           domain.Order
		deliveredAt sql.NullTime
	)
	err := row.Scan(
		&o.ID, &o.QuotationID, &o.UserID, &o.TotalAmount, &o.PaymentSlip,
		&o.PaymentStatus, &o.DeliverStatus, &o.CreatedAt, &deliveredAt, &o.Version,
	)
	if deliveredAt.Valid {
		o.DeliveredAt = &deliveredAt.Time
	}
	return o, err
}

// Insert stores o and sets its id. A second order for the same quotation
// violates uq_orders_quotation and fails with DuplicateOrderError.
func (r *MySQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, o *domain.Order) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO orders (quotation_id, user_id, total_amount, payment_slip, payment_status, deliver_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.QuotationID, o.UserID, o.TotalAmount, o.PaymentSlip, o.PaymentStatus, o.DeliverStatus, o.CreatedAt,
	)
	if storemysql.IsDuplicateKey(err) {
		return errors.NewDuplicateOrderError(o.QuotationID)
	}
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting order id: %w", err)
	}
	o.ID = id

	return nil
}

func (r *MySQLOrderRepository) ExistsByQuotationID(ctx context.Context, quotationID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE quotation_id = ?)`, quotationID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking order for quotation: %w", err)
	}
	return exists, nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	return findOne(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id), id)
}

// FindByIDForUpdate locks the order row until tx ends.
func (r *MySQLOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error) {
	return findOne(tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ? FOR UPDATE`, id), id)
}

func findOne(row *sql.Row, id int64) (*domain.Order, error) {
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}
	return &o, nil
}

func (r *MySQLOrderRepository) UpdatePaymentStatus(ctx context.Context, tx *sql.Tx, id int64, status domain.PaymentStatus) error {
	result, err := tx.ExecContext(ctx, `UPDATE orders SET payment_status = ?, version = version + 1 WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("updating payment status: %w", err)
	}
	return requireRow(result, id)
}

func (r *MySQLOrderRepository) UpdateDeliverStatus(ctx context.Context, tx *sql.Tx, id int64, status domain.DeliverStatus, deliveredAt *time.Time) error {
	result, err := tx.ExecContext(ctx, `UPDATE orders SET deliver_status = ?, delivered_at = ?, version = version + 1 WHERE id = ?`, status, deliveredAt, id)
	if err != nil {
		return fmt.Errorf("updating deliver status: %w", err)
	}
	return requireRow(result, id)
}

func requireRow(result sql.Result, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	return nil
}

// FindAll returns every order, newest first.
func (r *MySQLOrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	return r.findMany(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC`)
}

func (r *MySQLOrderRepository) FindByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return r.findMany(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

func (r *MySQLOrderRepository) findMany(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	return orders, nil
}

// QuotationIDsByUser lists the quotations of userID that already back an order.
func (r *MySQLOrderRepository) QuotationIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT quotation_id FROM orders WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying ordered quotations: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning quotation id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quotation ids: %w", err)
	}

	return ids, nil
}
