package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookLogStatus string

const (
	WebhookLogStatusReceived     WebhookLogStatus = "received"
	WebhookLogStatusHandled      WebhookLogStatus = "handled"
	WebhookLogStatusHandleFailed WebhookLogStatus = "handle_failed"
)

// WebhookLog is the audit trail of provider notifications: one "received"
// row per delivery plus a terminal row carrying the handling result.
type WebhookLog struct {
	ID               string           `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ProviderID       string           `gorm:"column:provider_id;type:varchar(64);not null" json:"provider_id"`
	TraceID          string           `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	OrderID          string           `gorm:"column:order_id;type:varchar(128);index" json:"order_id"`
	CfPaymentID      string           `gorm:"column:cf_payment_id;type:varchar(128)" json:"cf_payment_id"`
	NotificationTime time.Time        `gorm:"column:notification_time" json:"notification_time"`
	Data             datatypes.JSON   `gorm:"column:data;type:jsonb" json:"data"`
	Result           *datatypes.JSON  `gorm:"column:result;type:jsonb" json:"result"`
	Status           WebhookLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (WebhookLog) TableName() string { return "webhook_log" }
