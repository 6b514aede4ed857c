package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}

type CartRepository interface {
	FindByUser(ctx context.Context, userID int64) ([]domain.CartLine, error)
	AddQuantity(ctx context.Context, tx *sql.Tx, userID, productID int64, quantity int) error
	SetQuantity(ctx context.Context, tx *sql.Tx, userID, productID int64, quantity int) error
	Delete(ctx context.Context, tx *sql.Tx, userID, productID int64) (bool, error)
	DeleteAll(ctx context.Context, tx *sql.Tx, userID int64) (int64, error)
	Exists(ctx context.Context, userID, productID int64) (bool, error)
}

type ProductRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Product, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

type CartService struct {
	tx       TransactionManager
	carts    CartRepository
	products ProductRepository
	users    UserRepository
	logger   *zap.Logger
}

func NewCartService(
	tx TransactionManager,
	carts CartRepository,
	products ProductRepository,
	users UserRepository,
	logger *zap.Logger,
) *CartService {
	return &CartService{
		tx:       tx,
		carts:    carts,
		products: products,
		users:    users,
		logger:   logger,
	}
}

// AddItem adds qty units to the user's line for productID. Only the requested
// qty is checked against stock, not the merged line.
func (s *CartService) AddItem(ctx context.Context, userID, productID int64, qty int) error {
	if qty <= 0 {
		return quantityError()
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.checkStock(ctx, tx, productID, qty); err != nil {
			return err
		}
		return s.carts.AddQuantity(ctx, tx, userID, productID, qty)
	})
	if err != nil {
		return err
	}

	s.logger.Info("cart item added", zap.Int64("userId", userID), zap.Int64("productId", productID), zap.Int("quantity", qty))
	return nil
}

// SetQuantity replaces the line quantity. A qty of zero or less removes the
// line and reports removed=true.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID int64, qty int) (bool, error) {
	if qty <= 0 {
		err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
			_, err := s.carts.Delete(ctx, tx, userID, productID)
			return err
		})
		if err != nil {
			return false, err
		}
		s.logger.Info("cart item removed", zap.Int64("userId", userID), zap.Int64("productId", productID))
		return true, nil
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return false, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.checkStock(ctx, tx, productID, qty); err != nil {
			return err
		}
		return s.carts.SetQuantity(ctx, tx, userID, productID, qty)
	})
	if err != nil {
		return false, err
	}

	s.logger.Info("cart item quantity set", zap.Int64("userId", userID), zap.Int64("productId", productID), zap.Int("quantity", qty))
	return false, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		deleted, err := s.carts.Delete(ctx, tx, userID, productID)
		if err != nil {
			return err
		}
		if !deleted {
			return apperrors.NewNotFoundError(fmt.Sprintf("product %d is not in the cart of user %d", productID, userID))
		}
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, userID int64) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		n, err := s.carts.DeleteAll(ctx, tx, userID)
		if err != nil {
			return err
		}
		s.logger.Info("cart cleared", zap.Int64("userId", userID), zap.Int64("lines", n))
		return nil
	})
}

// Snapshot returns the user's lines, newest first. It never mutates.
func (s *CartService) Snapshot(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	return s.carts.FindByUser(ctx, userID)
}

func (s *CartService) IsProductInCart(ctx context.Context, userID, productID int64) (bool, error) {
	return s.carts.Exists(ctx, userID, productID)
}

func (s *CartService) checkStock(ctx context.Context, tx *sql.Tx, productID int64, qty int) error {
	p, err := s.products.FindByIDForUpdate(ctx, tx, productID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return apperrors.NewProductUnavailableError(productID)
		}
		return err
	}
	if !p.IsActive {
		return apperrors.NewProductUnavailableError(productID)
	}
	if qty > p.AvailableStock() {
		return apperrors.NewInsufficientStockError(productID, qty, p.AvailableStock())
	}
	return nil
}

func quantityError() error {
	return apperrors.NewValidationError("quantity must be positive", apperrors.ValidationDetail{
		Field:   "quantity",
		Message: "quantity must be greater than zero",
	})
}
