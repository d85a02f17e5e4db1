package migrations

import (
	"github.com/threadline/storefront/app/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}, &models.Order{}, &models.Review{}, &models.StoreSale{}, &models.PaymentReconciliation{})
}
