package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ReconcileOrderNotRecorded = "order_not_recorded"
	ReconcileAmountMismatch   = "amount_mismatch"
)

// PaymentReconciliation records a captured payment that has no order yet.
type PaymentReconciliation struct {
	ID              string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	PaymentID       string          `gorm:"size:255;not null;uniqueIndex" json:"payment_id"`
	UserID          string          `gorm:"size:36;index" json:"user_id"`
	PaymentMethod   string          `gorm:"size:20" json:"payment_method"`
	PaymentStatus   string          `gorm:"size:100" json:"payment_status"`
	Amount          decimal.Decimal `gorm:"type:decimal(16,2)" json:"amount"`
	ExpectedAmount  decimal.Decimal `gorm:"type:decimal(16,2)" json:"expected_amount"`
	Address         string          `gorm:"type:text" json:"address"`
	Products        string          `gorm:"type:longtext" json:"products"`
	Kind            string          `gorm:"size:40;not null;index" json:"kind"`
	Reason          string          `gorm:"type:text" json:"reason"`
	Attempts        int             `gorm:"not null;default:0" json:"attempts"`
	ResolvedOrderID *string         `gorm:"size:36;index" json:"resolved_order_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (p *PaymentReconciliation) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// Retryable reports whether the reconcile job may create the order on its own. Amount mismatches
// need a person to decide between refund and manual order.
func (p PaymentReconciliation) Retryable() bool {
	return p.Kind == ReconcileOrderNotRecorded && !p.Resolved()
}

func (p PaymentReconciliation) Resolved() bool {
	return p.ResolvedOrderID != nil && *p.ResolvedOrderID != ""
}
