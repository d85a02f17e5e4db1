package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	WalkInCustomerName   = "Walk-in"
	UnknownCustomerPhone = "N/A"
)

type StoreSaleItem struct {
	Category    string          `json:"category" validate:"required"`
	ProductName string          `json:"productName" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
}

// StoreSale is a point-of-sale bill for a walk-in customer.
type StoreSale struct {
	ID             string          `gorm:"size:36;not null;uniqueIndex;primary_key" json:"id"`
	CustomerName   string          `gorm:"size:100;not null" json:"customer_name"`
	CustomerMobile string          `gorm:"size:20;not null" json:"customer_mobile"`
	Items          []StoreSaleItem `gorm:"serializer:json;type:text" json:"items"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"subtotal"`
	Tax            decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"tax"`
	Total          decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"total"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (s *StoreSale) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}
