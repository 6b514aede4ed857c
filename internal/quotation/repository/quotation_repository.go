package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

const quotationColumns = `id, user_id, name, address, contact, status, total_price, created_at`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type MySQLQuotationRepository struct {
	db *sql.DB
}

func NewMySQLQuotationRepository(db *sql.DB) *MySQLQuotationRepository {
	return &MySQLQuotationRepository{db: db}
}

func scanQuotation(row rowScanner) (domain.Quotation, error) {
	var q domain.Quotation
	err := row.Scan(&q.ID, &q.UserID, &q.Name, &q.Address, &q.Contact, &q.Status, &q.TotalPrice, &q.CreatedAt)
	return q, err
}

// Insert stores q and its items, filling in the generated ids.
func (r *MySQLQuotationRepository) Insert(ctx context.Context, tx *sql.Tx, q *domain.Quotation) error {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO quotations (user_id, name, address, contact, status, total_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.UserID, q.Name, q.Address, q.Contact, q.Status, q.TotalPrice, q.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting quotation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting quotation id: %w", err)
	}
	q.ID = id

	for i := range q.Items {
		item := &q.Items[i]
		item.QuotationID = id

		result, err := tx.ExecContext(ctx, `
			INSERT INTO quotation_items (quotation_id, product_id, quantity, unit_price)
			VALUES (?, ?, ?, ?)`,
			id, item.ProductID, item.Quantity, item.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("inserting quotation item for product %d: %w", item.ProductID, err)
		}

		itemID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting quotation item id: %w", err)
		}
		item.ID = itemID
	}

	return nil
}

func (r *MySQLQuotationRepository) FindByID(ctx context.Context, id int64) (*domain.Quotation, error) {
	return r.findOne(ctx, r.db, `SELECT `+quotationColumns+` FROM quotations WHERE id = ?`, id)
}

// FindByIDForUpdate locks the quotation row until tx ends.
func (r *MySQLQuotationRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Quotation, error) {
	return r.findOne(ctx, tx, `SELECT `+quotationColumns+` FROM quotations WHERE id = ? FOR UPDATE`, id)
}

func (r *MySQLQuotationRepository) findOne(ctx context.Context, q querier, query string, id int64) (*domain.Quotation, error) {
	quotation, err := scanQuotation(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("quotation with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying quotation by id: %w", err)
	}

	items, err := loadItems(ctx, q, []int64{id})
	if err != nil {
		return nil, err
	}
	quotation.Items = items[id]

	return &quotation, nil
}

func (r *MySQLQuotationRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status domain.QuotationStatus) error {
	result, err := tx.ExecContext(ctx, `UPDATE quotations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("updating quotation status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("quotation with id %d not found", id))
	}

	return nil
}

// FindAll returns every quotation, newest first.
func (r *MySQLQuotationRepository) FindAll(ctx context.Context) ([]domain.Quotation, error) {
	return r.findMany(ctx, `SELECT `+quotationColumns+` FROM quotations ORDER BY created_at DESC, id DESC`)
}

func (r *MySQLQuotationRepository) FindByUserAndStatus(ctx context.Context, userID int64, status domain.QuotationStatus) ([]domain.Quotation, error) {
	return r.findMany(ctx, `
		SELECT `+quotationColumns+`
		FROM quotations
		WHERE user_id = ? AND status = ?
		ORDER BY created_at DESC, id DESC`,
		userID, status,
	)
}

// FindByIDs returns the quotations that exist, keyed by id.
func (r *MySQLQuotationRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.Quotation, error) {
	out := make(map[int64]domain.Quotation, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders, args := inClause(ids)
	quotations, err := r.findMany(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	for _, q := range quotations {
		out[q.ID] = q
	}
	return out, nil
}

func (r *MySQLQuotationRepository) findMany(ctx context.Context, query string, args ...interface{}) ([]domain.Quotation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying quotations: %w", err)
	}
	defer rows.Close()

	var quotations []domain.Quotation
	var ids []int64
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning quotation row: %w", err)
		}
		quotations = append(quotations, q)
		ids = append(ids, q.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quotation rows: %w", err)
	}

	items, err := loadItems(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range quotations {
		quotations[i].Items = items[quotations[i].ID]
	}

	return quotations, nil
}

// loadItems fetches the items of every quotation in ids, in insertion order.
func loadItems(ctx context.Context, q querier, ids []int64) (map[int64][]domain.QuotationItem, error) {
	items := make(map[int64][]domain.QuotationItem, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	placeholders, args := inClause(ids)
	rows, err := q.QueryContext(ctx, `
		SELECT qi.id, qi.quotation_id, qi.product_id, p.name, qi.quantity, qi.unit_price
		FROM quotation_items qi
		JOIN products p ON p.id = qi.product_id
		WHERE qi.quotation_id IN (`+placeholders+`)
		ORDER BY qi.quotation_id, qi.id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("querying quotation items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.QuotationItem
		if err := rows.Scan(&it.ID, &it.QuotationID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scanning quotation item row: %w", err)
		}
		items[it.QuotationID] = append(items[it.QuotationID], it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating quotation item rows: %w", err)
	}

	return items, nil
}

func inClause(ids []int64) (string, []interface{}) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ", "), args
}
