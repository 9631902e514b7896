package types

type PaymentProvider string

const (
	PaymentProviderCashfree PaymentProvider = "cashfree"
)

type MembershipStatus string

const (
	MembershipStatusActive   MembershipStatus = "active"
	MembershipStatusInactive MembershipStatus = "inactive"
)

// Plan is a purchasable membership plan. Plans are defined in configuration;
// the order service resolves a plan id into an amount before talking to the
// payment provider.
type Plan struct {
	ID       string  `json:"id" mapstructure:"id"`
	Name     string  `json:"name" mapstructure:"name"`
	Amount   float64 `json:"amount" mapstructure:"amount"`
	Currency string  `json:"currency" mapstructure:"currency"`
}
