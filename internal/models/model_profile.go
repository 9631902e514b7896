package models

import (
	"time"

	"github.com/clubworks/memberpay/pkg/types"
)

// Profile is the application-visible user record. Its id always equals the
// id of the auth identity it belongs to; no profile exists without one.
type Profile struct {
	ID               string                 `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Email            string                 `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	Name             string                 `gorm:"column:name;type:varchar(255)" json:"name"`
	Phone            string                 `gorm:"column:phone;type:varchar(32)" json:"phone"`
	MembershipStatus types.MembershipStatus `gorm:"column:membership_status;type:varchar(32);not null" json:"membership_status"`
	// PaymentID points at the payment that most recently activated the
	// membership. Repointed on renewal, last write wins.
	PaymentID *string   `gorm:"column:payment_id;type:uuid;default:null" json:"payment_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) IsActiveMember() bool {
	return p != nil && p.MembershipStatus == types.MembershipStatusActive
}
