package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Product) AvailableStock() int {
	if p.Stock < 0 {
		return 0
	}
	return p.Stock
}

// CanSupply reports whether the product is active and holds at least qty units.
func (p Product) CanSupply(qty int) bool {
	return p.IsActive && p.AvailableStock() >= qty
}
