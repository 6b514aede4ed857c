package notification

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

const (
	EventQuotationApproved = "quotation.approved"
	EventQuotationRejected = "quotation.rejected"
	EventPaymentApproved   = "order.payment.approved"
	EventPaymentRejected   = "order.payment.rejected"
	EventDeliveryUpdated   = "order.delivery.updated"
)

// Event is one customer-facing message. Recipient is an email address.
type Event struct {
	ID         string
	Type       string
	UserID     int64
	Recipient  string
	Subject    string
	Body       string
	OccurredAt time.Time
	Attributes map[string]string
}

func newEvent(eventType string, userID int64, recipient, subject, body string, now time.Time, attrs map[string]string) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		UserID:     userID,
		Recipient:  recipient,
		Subject:    subject,
		Body:       body,
		OccurredAt: now,
		Attributes: attrs,
	}
}

func money(q domain.Quotation) string {
	return "Rs. " + q.TotalPrice.StringFixed(2)
}

// QuotationDecided composes the message sent after staff approve or reject q.
func QuotationDecided(q domain.Quotation, customer domain.User, now time.Time) Event {
	attrs := map[string]string{
		"quotationId": strconv.FormatInt(q.ID, 10),
		"status":      string(q.Status),
	}

	if q.Status == domain.QuotationStatusApproved {
		body := fmt.Sprintf("Hello %s,\n\n"+
			"Your quotation with ID %d has been APPROVED.\n"+
			"Total Price: %s\n\n"+
			"You can now proceed with making your payment\n\n"+
			"We will ensure product delivery as soon as possible\n\n"+
			"Thank you for choosing us!", q.Name, q.ID, money(q))
		return newEvent(EventQuotationApproved, q.UserID, customer.Email, "Your Quotation is Approved", body, now, attrs)
	}

	body := fmt.Sprintf("Hello %s,\n\n"+
		"Unfortunately, your quotation with ID %d has been REJECTED.\n"+
		"Please contact us if you would like a revised quotation.\n\n"+
		"Thank you for your understanding.", q.Name, q.ID)
	return newEvent(EventQuotationRejected, q.UserID, customer.Email, "Your Quotation is Rejected", body, now, attrs)
}

func PaymentDecided(o domain.Order, q domain.Quotation, customer domain.User, now time.Time) Event {
	attrs := map[string]string{
		"orderId":       strconv.FormatInt(o.ID, 10),
		"paymentStatus": string(o.PaymentStatus),
	}

	if o.PaymentStatus == domain.PaymentStatusApproved {
		body := fmt.Sprintf("Hello %s,\n\n"+
			"Your payment for Order #%d has been APPROVED.\n"+
			"Total Amount: Rs. %s\n\n"+
			"Your order is now being processed for delivery.\n\n"+
			"Thank you for your business!", q.Name, o.ID, o.TotalAmount.StringFixed(2))
		return newEvent(EventPaymentApproved, o.UserID, customer.Email, fmt.Sprintf("Payment Approved - Order #%d", o.ID), body, now, attrs)
	}

	body := fmt.Sprintf("Hello %s,\n\n"+
		"Unfortunately, your payment for Order #%d has been REJECTED.\n"+
		"Please contact us for more information or submit a valid payment slip.\n\n"+
		"Thank you for your understanding.", q.Name, o.ID)
	return newEvent(EventPaymentRejected, o.UserID, customer.Email, fmt.Sprintf("Payment Rejected - Order #%d", o.ID), body, now, attrs)
}

var deliveryLines = map[domain.DeliverStatus]string{
	domain.DeliverStatusProcessing: "Your order is being processed and will be shipped soon.\n\n",
	domain.DeliverStatusShipped:    "Your order has been shipped and is on its way to you.\n\n",
	domain.DeliverStatusDelivered:  "Your order has been successfully delivered. Thank you for choosing us!\n\n",
	domain.DeliverStatusCancelled:  "Your order has been cancelled. Please contact us if this is unexpected.\n\n",
	domain.DeliverStatusReturned:   "Your return has been recorded. We will be in touch about next steps.\n\n",
}

func DeliveryUpdated(o domain.Order, q domain.Quotation, customer domain.User, now time.Time) Event {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", q.Name)
	fmt.Fprintf(&b, "Your order #%d status has been updated to: %s\n\n", o.ID, o.DeliverStatus)
	b.WriteString(deliveryLines[o.DeliverStatus])
	b.WriteString("Thank you for your business!")

	attrs := map[string]string{
		"orderId":       strconv.FormatInt(o.ID, 10),
		"deliverStatus": string(o.DeliverStatus),
	}
	return newEvent(EventDeliveryUpdated, o.UserID, customer.Email, fmt.Sprintf("Order Status Update - Order #%d", o.ID), b.String(), now, attrs)
}
