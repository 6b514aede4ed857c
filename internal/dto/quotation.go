package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type CreateQuotationRequest struct {
	UserID  int64  `json:"userId"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

type QuotationItemDTO struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type QuotationDTO struct {
	QuotationID int64              `json:"quotationId"`
	UserID      int64              `json:"userId"`
	Name        string             `json:"name"`
	Address     string             `json:"address"`
	Contact     string             `json:"contact"`
	Status      string             `json:"status"`
	RequestDate time.Time          `json:"requestDate"`
	TotalPrice  decimal.Decimal    `json:"totalPrice"`
	Items       []QuotationItemDTO `json:"items"`
}

func NewQuotationItemDTOs(items []domain.QuotationItem) []QuotationItemDTO {
	out := make([]QuotationItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, QuotationItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal(),
		})
	}
	return out
}

func NewQuotationDTO(q domain.Quotation) QuotationDTO {
	return QuotationDTO{
		QuotationID: q.ID,
		UserID:      q.UserID,
		Name:        q.Name,
		Address:     q.Address,
		Contact:     q.Contact,
		Status:      string(q.Status),
		RequestDate: q.CreatedAt,
		TotalPrice:  q.TotalPrice,
		Items:       NewQuotationItemDTOs(q.Items),
	}
}

func NewQuotationDTOs(qs []domain.Quotation) []QuotationDTO {
	out := make([]QuotationDTO, 0, len(qs))
	for _, q := range qs {
		out = append(out, NewQuotationDTO(q))
	}
	return out
}
