package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type CartItemRequest struct {
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type CartLineDTO struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	AddedAt     time.Time       `json:"addedAt"`
}

type CartResponse struct {
	UserID        int64           `json:"userId"`
	Items         []CartLineDTO   `json:"items"`
	DistinctLines int             `json:"distinctLines"`
	ItemCount     int             `json:"itemCount"`
	TotalValue    decimal.Decimal `json:"totalValue"`
}

type InCartResponse struct {
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId"`
	InCart    bool  `json:"inCart"`
}

func NewCartResponse(userID int64, lines []domain.CartLine) CartResponse {
	items := make([]CartLineDTO, 0, len(lines))
	for _, l := range lines {
		items = append(items, CartLineDTO{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal(),
			AddedAt:     l.AddedAt,
		})
	}

	summary := domain.SummarizeCart(lines)
	return CartResponse{
		UserID:        userID,
		Items:         items,
		DistinctLines: summary.DistinctLines,
		ItemCount:     summary.ItemCount,
		TotalValue:    summary.TotalValue,
	}
}
