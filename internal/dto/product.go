package dto

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type SearchProductsRequest struct {
	ProductIDs []int64 `json:"productIds"`
}

type SearchProductsResponse struct {
	Products []ProductDTO `json:"products"`
	NotFound []int64      `json:"notFound"`
}

type SetStockRequest struct {
	Quantity int `json:"quantity"`
}

type AvailabilityResponse struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	Available bool  `json:"available"`
}

type ProductDTO struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Stock          int             `json:"stock"`
	AvailableStock int             `json:"availableStock"`
	IsActive       bool            `json:"isActive"`
}

func NewProductDTO(p domain.Product) ProductDTO {
	return ProductDTO{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		Stock:          p.Stock,
		AvailableStock: p.AvailableStock(),
		IsActive:       p.IsActive,
	}
}
