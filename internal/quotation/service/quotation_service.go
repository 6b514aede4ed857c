package service

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/infrastructure/metrics"
	"storefront/internal/infrastructure/tracing"
	"storefront/internal/notification"
)

type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}

type QuotationRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, q *domain.Quotation) error
	FindByID(ctx context.Context, id int64) (*domain.Quotation, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Quotation, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status domain.QuotationStatus) error
	FindAll(ctx context.Context) ([]domain.Quotation, error)
	FindByUserAndStatus(ctx context.Context, userID int64, status domain.QuotationStatus) ([]domain.Quotation, error)
}

type CartRepository interface {
	FindByUserForUpdate(ctx context.Context, tx *sql.Tx, userID int64) ([]domain.CartLine, error)
	DeleteAll(ctx context.Context, tx *sql.Tx, userID int64) (int64, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// OrderLookup reports which of a user's quotations already back an order.
type OrderLookup interface {
	QuotationIDsByUser(ctx context.Context, userID int64) ([]int64, error)
}

type Notifier interface {
	Publish(e notification.Event)
}

type CreateInput struct {
	UserID  int64
	Name    string
	Address string
	Contact string
}

type QuotationService struct {
	tx         TransactionManager
	quotations QuotationRepository
	carts      CartRepository
	users      UserRepository
	orders     OrderLookup
	notifier   Notifier
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	logger     *zap.Logger
	now        func() time.Time
}

func NewQuotationService(
	tx TransactionManager,
	quotations QuotationRepository,
	carts CartRepository,
	users UserRepository,
	orders OrderLookup,
	notifier Notifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) *QuotationService {
	return &QuotationService{
		tx:         tx,
		quotations: quotations,
		carts:      carts,
		users:      users,
		orders:     orders,
		notifier:   notifier,
		metrics:    m,
		tracer:     otel.Tracer("storefront/quotation"),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create prices the user's cart into a PENDING quotation and empties the
// cart in the same transaction.
func (s *QuotationService) Create(ctx context.Context, in CreateInput) (_ *domain.Quotation, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "quotation.create", trace.WithAttributes(attribute.Int64("user.id", in.UserID)))
	defer func() {
		s.metrics.Observe("quotation.create", start, err)
		tracing.End(span, err)
	}()

	if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	var quotation *domain.Quotation
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		lines, err := s.carts.FindByUserForUpdate(ctx, tx, in.UserID)
		if err != nil {
			return err
		}

		q, err := domain.NewQuotation(in.UserID, in.Name, in.Address, in.Contact, lines, s.now())
		if err != nil {
			return err
		}

		if err := s.quotations.Insert(ctx, tx, q); err != nil {
			return err
		}

		if _, err := s.carts.DeleteAll(ctx, tx, in.UserID); err != nil {
			return err
		}

		quotation = q
		return nil
	})
	if err != nil {
		s.logger.Warn("quotation not created", zap.Int64("userId", in.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("quotation created",
		zap.Int64("quotationId", quotation.ID),
		zap.Int64("userId", quotation.UserID),
		zap.Int("items", len(quotation.Items)),
		zap.String("totalPrice", quotation.TotalPrice.StringFixed(2)),
	)
	return quotation, nil
}

// SetStatus decides a PENDING quotation. The customer is notified after the
// commit; a failed notification never undoes the decision.
func (s *QuotationService) SetStatus(ctx context.Context, id int64, status domain.QuotationStatus) (_ *domain.Quotation, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "quotation.set_status", trace.WithAttributes(
		attribute.Int64("quotation.id", id),
		attribute.String("quotation.status", string(status)),
	))
	defer func() {
		s.metrics.Observe("quotation.set_status", start, err)
		tracing.End(span, err)
	}()

	var quotation *domain.Quotation
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		q, err := s.quotations.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := q.Decide(status); err != nil {
			return err
		}

		if err := s.quotations.UpdateStatus(ctx, tx, id, q.Status); err != nil {
			return err
		}

		quotation = q
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quotation status updated", zap.Int64("quotationId", id), zap.String("status", string(status)))
	s.notify(ctx, *quotation)

	return quotation, nil
}

func (s *QuotationService) notify(ctx context.Context, q domain.Quotation) {
	customer, err := s.users.FindByID(ctx, q.UserID)
	if err != nil {
		s.logger.Warn("skipping quotation notification", zap.Int64("quotationId", q.ID), zap.Error(err))
		return
	}
	s.notifier.Publish(notification.QuotationDecided(q, *customer, s.now()))
}

func (s *QuotationService) Get(ctx context.Context, id int64) (*domain.Quotation, error) {
	return s.quotations.FindByID(ctx, id)
}

func (s *QuotationService) ListAll(ctx context.Context) ([]domain.Quotation, error) {
	return s.quotations.FindAll(ctx)
}

// ListApprovedUnbilled returns the user's APPROVED quotations that no order
// references yet.
func (s *QuotationService) ListApprovedUnbilled(ctx context.Context, userID int64) ([]domain.Quotation, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	approved, err := s.quotations.FindByUserAndStatus(ctx, userID, domain.QuotationStatusApproved)
	if err != nil {
		return nil, err
	}

	billedIDs, err := s.orders.QuotationIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	billed := make(map[int64]struct{}, len(billedIDs))
	for _, id := range billedIDs {
		billed[id] = struct{}{}
	}

	unbilled := make([]domain.Quotation, 0, len(approved))
	for _, q := range approved {
		if _, ok := billed[q.ID]; !ok {
			unbilled = append(unbilled, q)
		}
	}

	return unbilled, nil
}
