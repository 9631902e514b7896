package models

import (
	"time"
)

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
	PaymentStatusPending PaymentStatus = "PENDING"
)

// Payment is the durable record of a confirmed charge. The unique indexes on
// order_id and cf_payment_id are the real dedup guarantee: under a webhook /
// verify race the second writer hits a unique violation, which the payment
// service maps to its duplicate sentinel.
type Payment struct {
	ID string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	// OrderID is the caller-generated order id sent to the provider.
	OrderID string `gorm:"column:order_id;type:varchar(128);not null;uniqueIndex" json:"order_id"`
	// CfPaymentID is the provider's payment identifier. Stable across
	// provider-side retries, unlike order_id.
	CfPaymentID string        `gorm:"column:cf_payment_id;type:varchar(128);not null;uniqueIndex" json:"cf_payment_id"`
	Email       string        `gorm:"column:email;type:varchar(255);not null;index" json:"email"`
	Name        string        `gorm:"column:name;type:varchar(255)" json:"name"`
	Phone       string        `gorm:"column:phone;type:varchar(32)" json:"phone"`
	Amount      float64       `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Status      PaymentStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	// PaymentMethod is the provider-reported instrument ("online" when the
	// verify path could not fetch payment details).
	PaymentMethod    string    `gorm:"column:payment_method;type:varchar(64)" json:"payment_method"`
	PaymentTimestamp time.Time `gorm:"column:payment_timestamp;default:null" json:"payment_timestamp"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
