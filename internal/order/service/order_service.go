package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	"storefront/internal/infrastructure/metrics"
	"storefront/internal/infrastructure/tracing"
	"storefront/internal/notification"
)

type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, o *domain.Order) error
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, tx *sql.Tx, id int64, status domain.PaymentStatus) error
	UpdateDeliverStatus(ctx context.Context, tx *sql.Tx, id int64, status domain.DeliverStatus, deliveredAt *time.Time) error
	FindAll(ctx context.Context) ([]domain.Order, error)
	FindByUser(ctx context.Context, userID int64) ([]domain.Order, error)
}

type QuotationRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Quotation, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Quotation, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.Quotation, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]domain.User, error)
}

type Ledger interface {
	Deduct(ctx context.Context, tx *sql.Tx, productID int64, qty int) error
}

// StatusCache is optional. A nil cache sends every status read to MySQL.
// Set must keep an entry whose Version is not older than the one offered,
// since readers and writers fill the cache in no particular order.
type StatusCache interface {
	Get(ctx context.Context, orderID int64) (*dto.OrderStatusResponse, error)
	Set(ctx context.Context, o domain.Order) error
}

type Notifier interface {
	Publish(e notification.Event)
}

type OrderService struct {
	tx         TransactionManager
	orders     OrderRepository
	quotations QuotationRepository
	users      UserRepository
	ledger     Ledger
	cache      StatusCache
	notifier   Notifier
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	logger     *zap.Logger
	now        func() time.Time
}

func NewOrderService(
	tx TransactionManager,
	orders OrderRepository,
	quotations QuotationRepository,
	users UserRepository,
	ledger Ledger,
	cache StatusCache,
	notifier Notifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		tx:         tx,
		orders:     orders,
		quotations: quotations,
		users:      users,
		ledger:     ledger,
		cache:      cache,
		notifier:   notifier,
		metrics:    m,
		tracer:     otel.Tracer("storefront/order"),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder creates the order for an approved quotation and deducts stock
// for every item in one transaction. Items are deducted in product id order
// so concurrent orders lock rows in the same sequence.
func (s *OrderService) PlaceOrder(ctx context.Context, quotationID int64, paymentSlip string) (_ *domain.Order, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "order.place", trace.WithAttributes(attribute.Int64("quotation.id", quotationID)))
	defer func() {
		s.metrics.Observe("order.place", start, err)
		tracing.End(span, err)
	}()

	var order *domain.Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		q, err := s.quotations.FindByIDForUpdate(ctx, tx, quotationID)
		if err != nil {
			return err
		}

		o, err := domain.NewOrder(q, paymentSlip, s.now())
		if err != nil {
			return err
		}

		if err := s.orders.Insert(ctx, tx, o); err != nil {
			return err
		}

		for _, item := range sortedByProduct(q.Items) {
			if err := s.ledger.Deduct(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		order = o
		return nil
	})
	if err != nil {
		s.logger.Warn("order not placed", zap.Int64("quotationId", quotationID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order placed",
		zap.Int64("orderId", order.ID),
		zap.Int64("quotationId", quotationID),
		zap.String("totalAmount", order.TotalAmount.StringFixed(2)),
	)
	s.cacheStatus(ctx, *order)

	return order, nil
}

func sortedByProduct(items []domain.QuotationItem) []domain.QuotationItem {
	sorted := make([]domain.QuotationItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })
	return sorted
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID int64, status domain.PaymentStatus) (_ *domain.Order, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "order.update_payment", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("order.payment_status", string(status)),
	))
	defer func() {
		s.metrics.Observe("order.update_payment", start, err)
		tracing.End(span, err)
	}()

	var order *domain.Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		o, err := s.orders.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if err := o.SetPaymentStatus(status); err != nil {
			return err
		}

		if err := s.orders.UpdatePaymentStatus(ctx, tx, orderID, o.PaymentStatus); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment status updated", zap.Int64("orderId", orderID), zap.String("paymentStatus", string(status)))
	s.cacheStatus(ctx, *order)
	s.notify(ctx, *order, notification.PaymentDecided)

	return order, nil
}

// UpdateDeliveryStatus parses raw and moves the delivery axis. Entering
// DELIVERED stamps the delivered date.
func (s *OrderService) UpdateDeliveryStatus(ctx context.Context, orderID int64, raw string) (_ *domain.Order, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "order.update_delivery", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer func() {
		s.metrics.Observe("order.update_delivery", start, err)
		tracing.End(span, err)
	}()

	status, err := domain.ParseDeliverStatus(raw)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("order.deliver_status", string(status)))

	var order *domain.Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		o, err := s.orders.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}

		if err := o.SetDeliverStatus(status, s.now()); err != nil {
			return err
		}

		if err := s.orders.UpdateDeliverStatus(ctx, tx, orderID, o.DeliverStatus, o.DeliveredAt); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("delivery status updated", zap.Int64("orderId", orderID), zap.String("deliverStatus", string(status)))
	s.cacheStatus(ctx, *order)
	s.notify(ctx, *order, notification.DeliveryUpdated)

	return order, nil
}

// Status reads through the cache. Cache failures fall back to MySQL.
func (s *OrderService) Status(ctx context.Context, orderID int64) (*dto.OrderStatusResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, orderID)
		if err != nil {
			s.logger.Warn("order status cache read failed", zap.Int64("orderId", orderID), zap.Error(err))
		}
		if cached != nil {
			return cached, nil
		}
	}

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.cacheStatus(ctx, *o)
	status := dto.NewOrderStatusResponse(*o)
	return &status, nil
}

func (s *OrderService) cacheStatus(ctx context.Context, o domain.Order) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, o); err != nil {
		s.logger.Warn("order status cache write failed", zap.Int64("orderId", o.ID), zap.Error(err))
	}
}

func (s *OrderService) notify(ctx context.Context, o domain.Order, compose func(domain.Order, domain.Quotation, domain.User, time.Time) notification.Event) {
	q, err := s.quotations.FindByID(ctx, o.QuotationID)
	if err != nil {
		s.logger.Warn("skipping order notification", zap.Int64("orderId", o.ID), zap.Error(err))
		return
	}
	customer, err := s.users.FindByID(ctx, o.UserID)
	if err != nil {
		s.logger.Warn("skipping order notification", zap.Int64("orderId", o.ID), zap.Error(err))
		return
	}
	s.notifier.Publish(compose(o, *q, *customer, s.now()))
}

func (s *OrderService) ListAll(ctx context.Context) ([]dto.OrderDTO, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, orders)
}

func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]dto.OrderDTO, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	orders, err := s.orders.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, orders)
}

// project joins each order with its quotation and customer for display.
func (s *OrderService) project(ctx context.Context, orders []domain.Order) ([]dto.OrderDTO, error) {
	quotationIDs := make([]int64, 0, len(orders))
	userIDs := make([]int64, 0, len(orders))
	seenUsers := make(map[int64]struct{}, len(orders))
	for _, o := range orders {
		quotationIDs = append(quotationIDs, o.QuotationID)
		if _, ok := seenUsers[o.UserID]; !ok {
			seenUsers[o.UserID] = struct{}{}
			userIDs = append(userIDs, o.UserID)
		}
	}

	quotations, err := s.quotations.FindByIDs(ctx, quotationIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	out := make([]dto.OrderDTO, 0, len(orders))
	for _, o := range orders {
		var customer *domain.User
		if u, ok := users[o.UserID]; ok {
			customer = &u
		}
		out = append(out, dto.NewOrderDTO(o, quotations[o.QuotationID], customer))
	}
	return out, nil
}
