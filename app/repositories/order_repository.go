package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/threadline/storefront/app/models"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrStockConflict    = errors.New("stock changed while placing the order")
	ErrDuplicatePayment = errors.New("an order already exists for this payment")
)

const mysqlDuplicateEntry = 1062

// StockLine is one product quantity to take out of inventory when an order is written.
type StockLine struct {
	ProductID string
	Quantity  int
}

type OrderRepository interface {
	CreateWithStock(ctx context.Context, order *models.Order, lines []StockLine) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error
	GetAllOrders(ctx context.Context) ([]models.Order, error)
	FindByUserID(ctx context.Context, userID string) ([]models.Order, error)
}

type gormOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

// CreateWithStock inserts the order and decrements stock for every line in one transaction.
// A line whose product no longer has enough stock rolls everything back with ErrStockConflict.
func (r *gormOrderRepository) CreateWithStock(ctx context.Context, order *models.Order, lines []StockLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if result.Error != nil {
				return fmt.Errorf("failed to decrement stock for product %s: %w", line.ProductID, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: product %s", ErrStockConflict, line.ProductID)
			}
		}

		if err := tx.Create(order).Error; err != nil {
			if isDuplicateEntry(err) {
				return ErrDuplicatePayment
			}
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

func (r *gormOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order

	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	var order models.Order

	err := r.db.WithContext(ctx).First(&order, "payment_id = ?", paymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// UpdateStatus only touches order_status; totals and line items stay as they were placed.
func (r *gormOrderRepository) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).
		Updates(map[string]interface{}{"order_status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *gormOrderRepository) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order

	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *gormOrderRepository) FindByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order

	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
