package service

import (
	"context"

	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type Repository interface {
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	SetStock(ctx context.Context, id int64, quantity int) error
}

type ProductService struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *ProductService {
	return &ProductService{repo: repo, logger: logger}
}

func (s *ProductService) GetProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, []int64, error) {
	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	foundSet := make(map[int64]struct{}, len(found))
	for _, p := range found {
		foundSet[p.ID] = struct{}{}
	}

	var notFoundIDs []int64
	for _, id := range ids {
		if _, ok := foundSet[id]; !ok {
			notFoundIDs = append(notFoundIDs, id)
		}
	}

	return found, notFoundIDs, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

// SetStock is the catalog edit of a stock level. Lifecycle code never calls
// it; order creation deducts through the inventory ledger.
func (s *ProductService) SetStock(ctx context.Context, id int64, quantity int) error {
	if quantity < 0 {
		return apperrors.NewValidationError("stock must not be negative", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be zero or greater",
		})
	}

	if err := s.repo.SetStock(ctx, id, quantity); err != nil {
		return err
	}

	s.logger.Info("product stock set", zap.Int64("productId", id), zap.Int("quantity", quantity))
	return nil
}
