package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/threadline/storefront/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReconciliationRepository interface {
	Record(ctx context.Context, rec *models.PaymentReconciliation) error
	ListUnresolved(ctx context.Context) ([]models.PaymentReconciliation, error)
	MarkResolved(ctx context.Context, id, orderID string) error
	RecordAttempt(ctx context.Context, id, reason string) error
}

type gormReconciliationRepository struct {
	DB *gorm.DB
}

func NewReconciliationRepository(db *gorm.DB) ReconciliationRepository {
	return &gormReconciliationRepository{DB: db}
}

// Record is keyed on the payment id: recording the same payment twice refreshes the reason.
func (r *gormReconciliationRepository) Record(ctx context.Context, rec *models.PaymentReconciliation) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "updated_at"}),
	}).Create(rec).Error
}

func (r *gormReconciliationRepository) ListUnresolved(ctx context.Context) ([]models.PaymentReconciliation, error) {
	var recs []models.PaymentReconciliation
	err := r.DB.WithContext(ctx).
		Where("resolved_order_id IS NULL OR resolved_order_id = ''").
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *gormReconciliationRepository) MarkResolved(ctx context.Context, id, orderID string) error {
	return r.DB.WithContext(ctx).
		Model(&models.PaymentReconciliation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"resolved_order_id": orderID,
			"attempts":          gorm.Expr("attempts + 1"),
			"updated_at":        time.Now(),
		}).Error
}

func (r *gormReconciliationRepository) RecordAttempt(ctx context.Context, id, reason string) error {
	err := r.DB.WithContext(ctx).
		Model(&models.PaymentReconciliation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"reason":     reason,
			"attempts":   gorm.Expr("attempts + 1"),
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to record reconciliation attempt %s: %w", id, err)
	}
	return nil
}
