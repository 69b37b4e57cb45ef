package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentIntent status values. CREATED exists only between the provider call
// and the first persist; a stored intent starts at PENDING.
const (
	IntentCreated   = "CREATED"
	IntentPending   = "PENDING"
	IntentSucceeded = "SUCCEEDED"
	IntentFailed    = "FAILED"
	IntentExpired   = "EXPIRED"
)

// PaymentIntent records one purchase attempt with a payment provider.
// Amount and currency are fixed at creation from the course's canonical
// price and never updated afterwards. Rows are kept for reconciliation.
type PaymentIntent struct {
	gorm.Model
	UserID      uint       `json:"user_id" gorm:"index;not null"`
	CourseID    uint       `json:"course_id" gorm:"index;not null"`
	Provider    string     `json:"provider" gorm:"size:32;not null;uniqueIndex:ux_payment_intents_provider_ref,priority:1"`
	ProviderRef string     `json:"provider_ref" gorm:"size:128;not null;uniqueIndex:ux_payment_intents_provider_ref,priority:2"`
	Amount      int64      `json:"amount" gorm:"not null"` // minor currency units
	Currency    string     `json:"currency" gorm:"size:8;not null"`
	Status      string     `json:"status" gorm:"size:16;not null;default:'PENDING'"`
	CompletedAt *time.Time `json:"completed_at"`
}

// Terminal reports whether the intent has reached a final status.
func (p *PaymentIntent) Terminal() bool {
	return p.Status == IntentSucceeded || p.Status == IntentFailed || p.Status == IntentExpired
}
