package usecase

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type QuotationRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Quotation, error)
}

type OrderRepository interface {
	ExistsByQuotationID(ctx context.Context, quotationID int64) (bool, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
}

type FileStore interface {
	Store(ctx context.Context, r io.Reader, suggestedName string) (string, error)
	Retrieve(ctx context.Context, locator string) ([]byte, error)
	Delete(ctx context.Context, locator string) error
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, quotationID int64, paymentSlip string) (*domain.Order, error)
}

type CreateOrderUseCase struct {
	quotations QuotationRepository
	orders     OrderRepository
	files      FileStore
	placer     OrderPlacer
	logger     *zap.Logger
}

func NewCreateOrderUseCase(
	quotations QuotationRepository,
	orders OrderRepository,
	files FileStore,
	placer OrderPlacer,
	logger *zap.Logger,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		quotations: quotations,
		orders:     orders,
		files:      files,
		placer:     placer,
		logger:     logger,
	}
}

// CreateOrder stores the payment slip and places the order for quotationID.
// The checks before the upload only keep obvious failures from writing a
// file; the unique index on orders.quotation_id still decides races.
func (uc *CreateOrderUseCase) CreateOrder(ctx context.Context, quotationID int64, file io.Reader, fileName string) (*domain.Order, error) {
	uc.logger.Info("create order started", zap.Int64("quotationId", quotationID), zap.String("fileName", fileName))

	q, err := uc.quotations.FindByID(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if q.Status != domain.QuotationStatusApproved {
		return nil, apperrors.NewInvalidTransitionError("quotation", string(q.Status), "ORDERED")
	}

	exists, err := uc.orders.ExistsByQuotationID(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewDuplicateOrderError(quotationID)
	}

	locator, err := uc.files.Store(ctx, file, fileName)
	if err != nil {
		return nil, fmt.Errorf("storing payment slip: %w", err)
	}

	order, err := uc.placer.PlaceOrder(ctx, quotationID, locator)
	if err != nil {
		if delErr := uc.files.Delete(context.WithoutCancel(ctx), locator); delErr != nil {
			uc.logger.Error("orphan payment slip left behind", zap.String("locator", locator), zap.Error(delErr))
		}
		return nil, err
	}

	return order, nil
}

// PaymentSlip returns the stored artifact of an order and its locator.
func (uc *CreateOrderUseCase) PaymentSlip(ctx context.Context, orderID int64) (string, []byte, error) {
	o, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return "", nil, err
	}
	if o.PaymentSlip == "" {
		return "", nil, apperrors.NewNotFoundError(fmt.Sprintf("order %d has no payment slip", orderID))
	}

	data, err := uc.files.Retrieve(ctx, o.PaymentSlip)
	if err != nil {
		return "", nil, err
	}
	return o.PaymentSlip, data, nil
}
