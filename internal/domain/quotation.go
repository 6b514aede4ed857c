package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "storefront/internal/errors"
)

type QuotationStatus string

const (
	QuotationStatusPending  QuotationStatus = "PENDING"
	QuotationStatusApproved QuotationStatus = "APPROVED"
	QuotationStatusRejected QuotationStatus = "REJECTED"
)

func ParseQuotationStatus(s string) (QuotationStatus, error) {
	switch status := QuotationStatus(strings.ToUpper(strings.TrimSpace(s))); status {
	case QuotationStatusPending, QuotationStatusApproved, QuotationStatusRejected:
		return status, nil
	}
	return "", apperrors.NewInvalidStatusError("quotation", s)
}

// CanTransitionTo allows a single decision out of PENDING.
func (s QuotationStatus) CanTransitionTo(to QuotationStatus) bool {
	return s == QuotationStatusPending && (to == QuotationStatusApproved || to == QuotationStatusRejected)
}

type QuotationItem struct {
	ID          int64
	QuotationID int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

func (i QuotationItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Quotation struct {
	ID         int64
	UserID     int64
	Name       string
	Address    string
	Contact    string
	Status     QuotationStatus
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
	Items      []QuotationItem
}

func SumItems(items []QuotationItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// NewQuotation prices a cart snapshot. Unit prices are copied from the lines
// so later catalog edits never change the quotation.
func NewQuotation(userID int64, name, address, contact string, lines []CartLine, now time.Time) (*Quotation, error) {
	if len(lines) == 0 {
		return nil, apperrors.NewEmptyCartError(userID)
	}

	items := make([]QuotationItem, 0, len(lines))
	for _, line := range lines {
		if !line.ProductActive {
			return nil, apperrors.NewProductUnavailableError(line.ProductID)
		}
		items = append(items, QuotationItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	return &Quotation{
		UserID:     userID,
		Name:       name,
		Address:    address,
		Contact:    contact,
		Status:     QuotationStatusPending,
		TotalPrice: SumItems(items),
		CreatedAt:  now,
		Items:      items,
	}, nil
}

func (q *Quotation) Decide(to QuotationStatus) error {
	if !q.Status.CanTransitionTo(to) {
		return apperrors.NewInvalidTransitionError("quotation", string(q.Status), string(to))
	}
	q.Status = to
	return nil
}
