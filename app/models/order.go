package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// OrderStatusCreated is the status every new order starts in.
const OrderStatusCreated = OrderStatusProcessing

var OrderStatusOptions = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, opt := range OrderStatusOptions {
		if s == opt {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition allows any move between non-terminal states (staff may correct a status back
// to Pending) and cancellation from any of them. Terminal states accept nothing.
func CanTransition(from, to OrderStatus) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	return !from.Terminal()
}

const (
	PaymentMethodCOD     = "cod"
	PaymentMethodPrepaid = "prepaid"

	PaymentStatusPaid       = "Paid"
	PaymentStatusPendingCOD = "Pending (COD)"
)

type Order struct {
	ID            string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"order_id"`
	UserID        string          `gorm:"size:36;index;not null" json:"user_id"`
	Products      string          `gorm:"type:longtext;not null" json:"products"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"total_amount"`
	PaymentID     string          `gorm:"size:255;not null;uniqueIndex" json:"payment_id"`
	PaymentStatus string          `gorm:"size:100" json:"payment_status"`
	PaymentMethod string          `gorm:"size:20" json:"payment_method"`
	OrderStatus   OrderStatus     `gorm:"size:20;default:'Processing'" json:"order_status"`
	Address       string          `gorm:"type:text;not null" json:"address"`
	CreatedAt     time.Time       `gorm:"index" json:"date"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.OrderStatus == "" {
		o.OrderStatus = OrderStatusCreated
	}
	return
}

// Snapshot decodes the frozen line items of the order.
func (o Order) Snapshot() (OrderSnapshot, error) {
	return DecodeSnapshot([]byte(o.Products))
}
