package inventory

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Product, error)
	DeductStock(ctx context.Context, tx *sql.Tx, id int64, quantity int) (bool, error)
}

// Ledger is the only writer that decrements product stock.
type Ledger struct {
	products ProductRepository
	logger   *zap.Logger
}

func NewLedger(products ProductRepository, logger *zap.Logger) *Ledger {
	return &Ledger{products: products, logger: logger}
}

// CheckAvailable reports whether the product exists, is active and has at
// least qty units.
func (l *Ledger) CheckAvailable(ctx context.Context, productID int64, qty int) (bool, error) {
	p, err := l.products.FindByID(ctx, productID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return false, nil
		}
		return false, err
	}
	return p.CanSupply(qty), nil
}

// Deduct removes qty units inside tx. The product row stays locked until tx
// ends, so a concurrent deduction waits and then sees the new level.
func (l *Ledger) Deduct(ctx context.Context, tx *sql.Tx, productID int64, qty int) error {
	if qty <= 0 {
		return apperrors.NewValidationError("quantity must be positive", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be greater than zero",
		})
	}

	p, err := l.products.FindByIDForUpdate(ctx, tx, productID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return apperrors.NewProductUnavailableError(productID)
		}
		return err
	}

	if p.AvailableStock() < qty {
		l.logger.Warn("stock deduction refused", zap.Int64("productId", productID), zap.Int("requested", qty), zap.Int("available", p.AvailableStock()))
		return apperrors.NewInsufficientStockError(productID, qty, p.AvailableStock())
	}

	ok, err := l.products.DeductStock(ctx, tx, productID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewInsufficientStockError(productID, qty, p.AvailableStock())
	}

	l.logger.Debug("stock deducted", zap.Int64("productId", productID), zap.Int("quantity", qty), zap.Int("remaining", p.Stock-qty))
	return nil
}
