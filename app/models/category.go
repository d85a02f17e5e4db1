package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID        string         `gorm:"size:36;not null;uniqueIndex;primary_key" json:"category_id"`
	Name      string         `gorm:"size:100;not null;uniqueIndex" json:"category_name"`
	Slug      string         `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	ImageURL  string         `gorm:"type:text" json:"image_url"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Uncategorized is the sentinel for products whose category is unknown or was removed.
var Uncategorized = Category{ID: "", Name: "Uncategorized", Slug: "uncategorized"}

func (c *Category) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}
