package models

import (
	"time"

	"gorm.io/datatypes"
)

type IdentityMetadata struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Identity is an authentication-capable account record, kept separate from
// the application profile. Identities created by reconciliation are
// pre-confirmed so the user can sign in without a confirmation round trip.
type Identity struct {
	ID             string                                `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Email          string                                `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	EmailConfirmed bool                                  `gorm:"column:email_confirmed;not null;default:false" json:"email_confirmed"`
	Metadata       datatypes.JSONType[*IdentityMetadata] `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt      time.Time                             `json:"created_at"`
	UpdatedAt      time.Time                             `json:"updated_at"`
}

func (Identity) TableName() string {
	return "identities"
}
