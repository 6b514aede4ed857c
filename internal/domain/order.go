package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "storefront/internal/errors"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusApproved PaymentStatus = "APPROVED"
	PaymentStatusRejected PaymentStatus = "REJECTED"
)

type DeliverStatus string

const (
	DeliverStatusPending    DeliverStatus = "PENDING"
	DeliverStatusProcessing DeliverStatus = "PROCESSING"
	DeliverStatusShipped    DeliverStatus = "SHIPPED"
	DeliverStatusDelivered  DeliverStatus = "DELIVERED"
	DeliverStatusCancelled  DeliverStatus = "CANCELLED"
	DeliverStatusReturned   DeliverStatus = "RETURNED"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusApproved, PaymentStatusRejected},
}

// Forward moves may skip steps. DELIVERED can only be returned.
var deliverTransitions = map[DeliverStatus][]DeliverStatus{
	DeliverStatusPending:    {DeliverStatusProcessing, DeliverStatusShipped, DeliverStatusDelivered, DeliverStatusCancelled, DeliverStatusReturned},
	DeliverStatusProcessing: {DeliverStatusShipped, DeliverStatusDelivered, DeliverStatusCancelled, DeliverStatusReturned},
	DeliverStatusShipped:    {DeliverStatusDelivered, DeliverStatusCancelled, DeliverStatusReturned},
	DeliverStatusDelivered:  {DeliverStatusReturned},
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case PaymentStatusPending, PaymentStatusApproved, PaymentStatusRejected:
		return status, nil
	}
	return "", apperrors.NewInvalidStatusError("payment", s)
}

func ParseDeliverStatus(s string) (DeliverStatus, error) {
	status := DeliverStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case DeliverStatusPending, DeliverStatusProcessing, DeliverStatusShipped,
		DeliverStatusDelivered, DeliverStatusCancelled, DeliverStatusReturned:
		return status, nil
	}
	return "", apperrors.NewInvalidStatusError("delivery", s)
}

func (s PaymentStatus) CanTransitionTo(to PaymentStatus) bool {
	for _, next := range paymentTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s DeliverStatus) CanTransitionTo(to DeliverStatus) bool {
	for _, next := range deliverTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s DeliverStatus) IsTerminal() bool {
	return len(deliverTransitions[s]) == 0
}

type Order struct {
	ID            int64
	QuotationID   int64
	UserID        int64
	TotalAmount   decimal.Decimal
	PaymentSlip   string
	PaymentStatus PaymentStatus
	DeliverStatus DeliverStatus
	CreatedAt     time.Time
	DeliveredAt   *time.Time
	// Version grows by one with every status change. Cached copies are
	// only replaced by a higher version.
	Version int64
}

// NewOrder builds the order for an approved quotation. Stock is not touched here.
func NewOrder(q *Quotation, paymentSlip string, now time.Time) (*Order, error) {
	if q.Status != QuotationStatusApproved {
		return nil, apperrors.NewInvalidTransitionError("quotation", string(q.Status), "ORDERED")
	}
	return &Order{
		QuotationID:   q.ID,
		UserID:        q.UserID,
		TotalAmount:   q.TotalPrice,
		PaymentSlip:   paymentSlip,
		PaymentStatus: PaymentStatusPending,
		DeliverStatus: DeliverStatusPending,
		CreatedAt:     now,
	}, nil
}

func (o *Order) SetPaymentStatus(to PaymentStatus) error {
	if !o.PaymentStatus.CanTransitionTo(to) {
		return apperrors.NewInvalidTransitionError("payment", string(o.PaymentStatus), string(to))
	}
	o.PaymentStatus = to
	o.Version++
	return nil
}

// SetDeliverStatus moves the delivery axis and stamps DeliveredAt on entry
// into DELIVERED. The stamp never precedes CreatedAt.
func (o *Order) SetDeliverStatus(to DeliverStatus, now time.Time) error {
	if !o.DeliverStatus.CanTransitionTo(to) {
		return apperrors.NewInvalidTransitionError("delivery", string(o.DeliverStatus), string(to))
	}
	o.DeliverStatus = to
	if to == DeliverStatusDelivered {
		if now.Before(o.CreatedAt) {
			now = o.CreatedAt
		}
		o.DeliveredAt = &now
	}
	o.Version++
	return nil
}
