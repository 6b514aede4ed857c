package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one (user, product) row of a cart joined with the current
// catalog data of its product.
type CartLine struct {
	ID            int64
	UserID        int64
	ProductID     int64
	Quantity      int
	ProductName   string
	UnitPrice     decimal.Decimal
	ProductActive bool
	AddedAt       time.Time
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type CartSummary struct {
	DistinctLines int
	ItemCount     int
	TotalValue    decimal.Decimal
}

func SummarizeCart(lines []CartLine) CartSummary {
	summary := CartSummary{TotalValue: decimal.Zero}
	for _, l := range lines {
		summary.DistinctLines++
		summary.ItemCount += l.Quantity
		summary.TotalValue = summary.TotalValue.Add(l.LineTotal())
	}
	return summary
}
