package cashfree

import (
	"fmt"
)

const (
	// WebhookTypePaymentSuccess is the only webhook type that triggers
	// reconciliation; every other type is acknowledged and ignored.
	WebhookTypePaymentSuccess = "PAYMENT_SUCCESS_WEBHOOK"

	// OrderStatusPaid is the provider's terminal status for a paid order.
	OrderStatusPaid = "PAID"

	// PaymentStatusSuccess is the provider's payment status for a captured
	// charge. Compared case-sensitively per the provider contract.
	PaymentStatusSuccess = "SUCCESS"
)

type CustomerDetails struct {
	CustomerID    string `json:"customer_id,omitempty"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type OrderMeta struct {
	ReturnURL string `json:"return_url,omitempty"`
	NotifyURL string `json:"notify_url,omitempty"`
}

type CreateOrderRequest struct {
	OrderID         string            `json:"order_id"`
	OrderAmount     float64           `json:"order_amount"`
	OrderCurrency   string            `json:"order_currency"`
	CustomerDetails CustomerDetails   `json:"customer_details"`
	OrderMeta       OrderMeta         `json:"order_meta"`
	OrderTags       map[string]string `json:"order_tags,omitempty"`
}

// OrderEntity is the provider's view of an order, returned by both create
// and fetch calls.
type OrderEntity struct {
	OrderID          string            `json:"order_id"`
	OrderAmount      float64           `json:"order_amount"`
	OrderCurrency    string            `json:"order_currency"`
	OrderStatus      string            `json:"order_status"`
	PaymentSessionID string            `json:"payment_session_id"`
	CustomerDetails  CustomerDetails   `json:"customer_details"`
	OrderTags        map[string]string `json:"order_tags"`
}

// PaymentEntity is one payment attempt against an order.
type PaymentEntity struct {
	CfPaymentID   string  `json:"cf_payment_id"`
	OrderID       string  `json:"order_id"`
	PaymentAmount float64 `json:"payment_amount"`
	PaymentStatus string  `json:"payment_status"`
	PaymentGroup  string  `json:"payment_group"`
	PaymentTime   string  `json:"payment_time"`
}

type WebhookOrder struct {
	OrderID       string  `json:"order_id"`
	OrderAmount   float64 `json:"order_amount"`
	OrderCurrency string  `json:"order_currency"`
}

type WebhookPayment struct {
	CfPaymentID   string  `json:"cf_payment_id"`
	PaymentAmount float64 `json:"payment_amount"`
	PaymentStatus string  `json:"payment_status"`
	PaymentGroup  string  `json:"payment_group"`
	PaymentTime   string  `json:"payment_time"`
}

type WebhookData struct {
	Order           WebhookOrder    `json:"order"`
	Payment         WebhookPayment  `json:"payment"`
	CustomerDetails CustomerDetails `json:"customer_details"`
}

// WebhookPayload is the notification body the provider posts to the webhook
// endpoint. Required fields are validated at the boundary so nothing
// half-shaped reaches the orchestrator.
type WebhookPayload struct {
	Type      string      `json:"type"`
	EventTime string      `json:"event_time"`
	Data      WebhookData `json:"data"`
}

// Validate checks the fields reconciliation depends on. Only meaningful for
// payment-success payloads; other types are ignored before validation.
func (p *WebhookPayload) Validate() error {
	if p.Data.Order.OrderID == "" {
		return fmt.Errorf("missing data.order.order_id")
	}
	if p.Data.Payment.CfPaymentID == "" {
		return fmt.Errorf("missing data.payment.cf_payment_id")
	}
	if p.Data.Payment.PaymentStatus == "" {
		return fmt.Errorf("missing data.payment.payment_status")
	}
	if p.Data.CustomerDetails.CustomerEmail == "" {
		return fmt.Errorf("missing data.customer_details.customer_email")
	}
	return nil
}
