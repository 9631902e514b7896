package cashfree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWebhookPayloadValidate(t *testing.T) {
	raw := `{
		"type": "PAYMENT_SUCCESS_WEBHOOK",
		"event_time": "2024-01-15T10:30:00+05:30",
		"data": {
			"order": {"order_id": "order_1700000000_abc123def", "order_amount": 999},
			"payment": {"cf_payment_id": "pay_1700000001", "payment_amount": 999, "payment_status": "SUCCESS", "payment_group": "upi"},
			"customer_details": {"customer_email": "alice@example.com", "customer_name": "Alice", "customer_phone": "9876543210"}
		}
	}`
	var p WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	require.NoError(t, p.Validate())
	require.Equal(t, WebhookTypePaymentSuccess, p.Type)
	require.Equal(t, "pay_1700000001", p.Data.Payment.CfPaymentID)
}

func TestWebhookPayloadValidate_MissingFields(t *testing.T) {
	p := &WebhookPayload{Type: WebhookTypePaymentSuccess}
	require.Error(t, p.Validate())

	p.Data.Order.OrderID = "order_1"
	require.Error(t, p.Validate())

	p.Data.Payment.CfPaymentID = "pay_1"
	require.Error(t, p.Validate())

	p.Data.Payment.PaymentStatus = "SUCCESS"
	require.Error(t, p.Validate())

	p.Data.CustomerDetails.CustomerEmail = "alice@example.com"
	require.NoError(t, p.Validate())
}
