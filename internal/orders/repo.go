package orders

import (
	"context"

	"github.com/moralesdev/storeapi-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles order persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.Order, error)
	FindByID(ctx context.Context, id int) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("SystemUser").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("SystemUser").
		Preload("OrderProducts.Product").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	lines := order.OrderProducts
	order.OrderProducts = nil

	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	for i := range lines {
		lines[i].OrderID = order.ID
	}
	// Plain insert, not an association save: a product listed twice on one
	// order must hit the composite primary key instead of being upserted away.
	if err := r.db.WithContext(ctx).Create(&lines).Error; err != nil {
		return err
	}
	order.OrderProducts = lines
	return nil
}
