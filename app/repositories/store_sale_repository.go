package repositories

import (
	"context"

	"github.com/threadline/storefront/app/models"
	"gorm.io/gorm"
)

type StoreSaleRepository interface {
	Create(ctx context.Context, sale *models.StoreSale) error
	GetAll(ctx context.Context) ([]models.StoreSale, error)
}

type gormStoreSaleRepository struct {
	db *gorm.DB
}

func NewStoreSaleRepository(db *gorm.DB) StoreSaleRepository {
	return &gormStoreSaleRepository{db: db}
}

func (r *gormStoreSaleRepository) Create(ctx context.Context, sale *models.StoreSale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *gormStoreSaleRepository) GetAll(ctx context.Context) ([]models.StoreSale, error) {
	var sales []models.StoreSale
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}
