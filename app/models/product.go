package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const MaxProductImages = 4

type Product struct {
	ID            string              `gorm:"size:36;not null;uniqueIndex;primary_key" json:"product_id"`
	Title         string              `gorm:"size:255;not null" json:"title"`
	Description   string              `gorm:"type:text" json:"description"`
	Brand         string              `gorm:"size:100" json:"brand"`
	Size          string              `gorm:"size:50" json:"size"`
	Color         string              `gorm:"size:50" json:"color"`
	CategoryID    *string             `gorm:"size:36;index" json:"category_id,omitempty"`
	Category      string              `gorm:"size:100" json:"category"`
	Price         decimal.Decimal     `gorm:"type:decimal(16,2);not null" json:"price"`
	DiscountPrice decimal.NullDecimal `gorm:"type:decimal(16,2)" json:"discount_price"`
	Stock         int                 `gorm:"not null;default:0" json:"stock"`
	Images        []string            `gorm:"serializer:json;type:text" json:"images"`
	ImageURL      string              `gorm:"type:text" json:"image_url"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	DeletedAt     gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.syncImageURL()
	return
}

func (p *Product) BeforeSave(tx *gorm.DB) (err error) {
	p.syncImageURL()
	return
}

// syncImageURL keeps the main display image in line with the first entry of Images.
func (p *Product) syncImageURL() {
	if len(p.Images) > 0 {
		p.ImageURL = p.Images[0]
		return
	}
	p.ImageURL = ""
}

// OnSale reports whether the discount price applies: present, positive and below the list price.
func (p Product) OnSale() bool {
	return p.DiscountPrice.Valid &&
		p.DiscountPrice.Decimal.IsPositive() &&
		p.DiscountPrice.Decimal.LessThan(p.Price)
}

func (p Product) EffectivePrice() decimal.Decimal {
	if p.OnSale() {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}

func (p Product) CategoryRef() string {
	if p.CategoryID == nil {
		return ""
	}
	return *p.CategoryID
}
