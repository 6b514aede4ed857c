package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type DeliveryStatusRequest struct {
	Status string `json:"status"`
}

// OrderDTO is the display projection of an order joined with its quotation
// and customer. It is computed per request and never stored.
type OrderDTO struct {
	OrderID       int64              `json:"orderId"`
	QuotationID   int64              `json:"quotationId"`
	UserID        int64              `json:"userId"`
	CustomerName  string             `json:"customerName"`
	CustomerEmail string             `json:"customerEmail"`
	Address       string             `json:"address"`
	PhoneNumber   string             `json:"phoneNumber"`
	TotalAmount   decimal.Decimal    `json:"totalAmount"`
	CreatedDate   time.Time          `json:"createdDate"`
	PaymentSlip   string             `json:"paymentSlip"`
	PaymentStatus string             `json:"paymentStatus"`
	DeliverStatus string             `json:"deliverStatus"`
	DeliveredDate *time.Time         `json:"deliveredDate"`
	Items         []QuotationItemDTO `json:"items"`
}

type OrderStatusResponse struct {
	OrderID       int64      `json:"orderId"`
	PaymentStatus string     `json:"paymentStatus"`
	DeliverStatus string     `json:"deliverStatus"`
	DeliveredDate *time.Time `json:"deliveredDate"`
}

func NewOrderDTO(o domain.Order, q domain.Quotation, customer *domain.User) OrderDTO {
	out := OrderDTO{
		OrderID:       o.ID,
		QuotationID:   o.QuotationID,
		UserID:        o.UserID,
		CustomerName:  q.Name,
		Address:       q.Address,
		PhoneNumber:   q.Contact,
		TotalAmount:   o.TotalAmount,
		CreatedDate:   o.CreatedAt,
		PaymentSlip:   o.PaymentSlip,
		PaymentStatus: string(o.PaymentStatus),
		DeliverStatus: string(o.DeliverStatus),
		DeliveredDate: o.DeliveredAt,
		Items:         NewQuotationItemDTOs(q.Items),
	}
	if customer != nil {
		out.CustomerEmail = customer.Email
	}
	return out
}

func NewOrderStatusResponse(o domain.Order) OrderStatusResponse {
	return OrderStatusResponse{
		OrderID:       o.ID,
		PaymentStatus: string(o.PaymentStatus),
		DeliverStatus: string(o.DeliverStatus),
		DeliveredDate: o.DeliveredAt,
	}
}

// OrderResponse is the order row alone, returned by lifecycle writes.
type OrderResponse struct {
	OrderID       int64           `json:"orderId"`
	QuotationID   int64           `json:"quotationId"`
	UserID        int64           `json:"userId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentSlip   string          `json:"paymentSlip"`
	PaymentStatus string          `json:"paymentStatus"`
	DeliverStatus string          `json:"deliverStatus"`
	CreatedDate   time.Time       `json:"createdDate"`
	DeliveredDate *time.Time      `json:"deliveredDate"`
}

func NewOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		OrderID:       o.ID,
		QuotationID:   o.QuotationID,
		UserID:        o.UserID,
		TotalAmount:   o.TotalAmount,
		PaymentSlip:   o.PaymentSlip,
		PaymentStatus: string(o.PaymentStatus),
		DeliverStatus: string(o.DeliverStatus),
		CreatedDate:   o.CreatedAt,
		DeliveredDate: o.DeliveredAt,
	}
}
