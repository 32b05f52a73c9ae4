package billing

import "time"

const (
	StatusInactive = "inactive"
	StatusActive   = "active"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

// Subscription mirrors the caller's Stripe subscription, one row per user.
type Subscription struct {
	UserID               string     `gorm:"column:user_id;primaryKey" json:"user_id"`
	StripeCustomerID     string     `gorm:"column:stripe_customer_id;index" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string     `gorm:"column:stripe_subscription_id;index" json:"stripe_subscription_id,omitempty"`
	Status               string     `gorm:"column:status;not null" json:"status"`
	PriceID              string     `gorm:"column:price_id" json:"price_id,omitempty"`
	CurrentPeriodEnd     *time.Time `gorm:"column:current_period_end" json:"current_period_end,omitempty"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (Subscription) TableName() string { return "user_subscriptions" }

func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == StatusActive
}
